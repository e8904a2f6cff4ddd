// Package manifest reads package list files. Each line names one OS package,
// optionally followed by comments that carry directives:
//
//	libvirt-bin                 # dist:trusty,xenial
//	qemu-kvm # testonly # not:rhel7
//	python-guestfs              # NOPRIME
//
// NOPRIME lines are never returned. A dist: list restricts the package to the
// named distro tags; a not: list excludes it from them. Tags compare
// case-insensitively.
package manifest

import (
	"bufio"
	"bytes"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// NoPrimeMarker marks packages installed by a later phase.
const NoPrimeMarker = "NOPRIME"

var (
	distDirectiveRe = regexp.MustCompile(`dist:([^\s#]*)`)
	notDirectiveRe  = regexp.MustCompile(`not:([^\s#]*)`)
)

// Entry is one selected package.
type Entry struct {
	Name       string
	Distros    []string
	NotDistros []string
	Source     string
	Line       int
}

// ParseLine applies the directive rules to a single manifest line for the
// given distro tag. It reports false when the line yields no package.
func ParseLine(line, distroTag string) (Entry, bool) {
	if strings.Contains(line, NoPrimeMarker) {
		return Entry{}, false
	}

	name, comment, _ := strings.Cut(line, "#")
	name = strings.TrimSpace(name)
	if name == "" {
		return Entry{}, false
	}

	e := Entry{Name: name}
	if m := distDirectiveRe.FindStringSubmatch(comment); m != nil {
		e.Distros = splitTags(m[1])
		if !containsTag(e.Distros, distroTag) {
			return Entry{}, false
		}
	}
	if m := notDirectiveRe.FindStringSubmatch(comment); m != nil {
		e.NotDistros = splitTags(m[1])
		if containsTag(e.NotDistros, distroTag) {
			return Entry{}, false
		}
	}
	return e, true
}

// Parse reads manifest content. source is recorded on each entry.
func Parse(data []byte, source, distroTag string) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		e, ok := ParseLine(scanner.Text(), distroTag)
		if !ok {
			continue
		}
		e.Source = source
		e.Line = lineNo
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to scan manifest %s", source)
	}
	return entries, nil
}

// ParseFile parses the manifest at path. A missing file yields no entries
// and no error.
func ParseFile(path, distroTag string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read manifest %s", path)
	}
	return Parse(data, path, distroTag)
}

// ParseFiles parses every path in order and concatenates the results.
// Package names repeated across files are kept.
func ParseFiles(paths []string, distroTag string) ([]Entry, error) {
	var all []Entry
	for _, p := range paths {
		entries, err := ParseFile(p, distroTag)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}
	return all, nil
}

// Names returns the package names of entries, in order.
func Names(entries []Entry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}

func splitTags(list string) []string {
	var tags []string
	for _, t := range strings.Split(list, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
