package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	testCases := []struct {
		name   string
		line   string
		tag    string
		want   string
		wantOK bool
	}{
		{"plain", "libxml2-dev", "trusty", "libxml2-dev", true},
		{"surrounding whitespace", "   curl   ", "trusty", "curl", true},
		{"plain comment", "gettext # used for translations", "trusty", "gettext", true},
		{"dist match is case-insensitive", "foo # dist:precise,trusty", "Trusty", "foo", true},
		{"dist miss", "foo # dist:precise,trusty", "Xenial", "", false},
		{"dist after glued comments", "bar # testonly # dist:xenial", "xenial", "bar", true},
		{"dist tags with spaces after commas", "bar # dist:f33, f34", "f34", "", false},
		{"dist exact not substring", "baz # dist:rhel7", "rhel", "", false},
		{"not excludes", "qemu-kvm # not:rhel7", "rhel7", "", false},
		{"not allows others", "qemu-kvm # not:rhel7", "f34", "qemu-kvm", true},
		{"dist and not", "pkg # dist:rhel7,rhel8 not:rhel8", "rhel8", "", false},
		{"noprime wins", "python-guestfs # NOPRIME", "trusty", "", false},
		{"noprime with matching dist", "libvirt # dist:trusty NOPRIME", "trusty", "", false},
		{"noprime anywhere", "NOPRIME-thing", "trusty", "", false},
		{"empty", "", "trusty", "", false},
		{"whitespace only", "   \t", "trusty", "", false},
		{"comment only", "# general deps", "trusty", "", false},
		{"indented comment", "   # dist:trusty", "trusty", "", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, ok := ParseLine(tc.line, tc.tag)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, e.Name)
		})
	}
}

func TestParseLine_RecordsDirectives(t *testing.T) {
	e, ok := ParseLine("pkg # dist:rhel7,RHEL8 not:f34", "rhel8")
	require.True(t, ok)
	assert.Equal(t, []string{"rhel7", "RHEL8"}, e.Distros)
	assert.Equal(t, []string{"f34"}, e.NotDistros)
}

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "nova", `# nova packages
dnsmasq-base
ebtables
genisoimage # required for config_drive
libvirt-bin # dist:trusty NOPRIME
qemu-kvm # dist:xenial
sqlite3
`)

	entries, err := ParseFile(path, "trusty")
	require.NoError(t, err)
	assert.Equal(t, []string{"dnsmasq-base", "ebtables", "genisoimage", "sqlite3"}, Names(entries))
	assert.Equal(t, path, entries[0].Source)
	assert.Equal(t, 2, entries[0].Line)
	assert.Equal(t, 7, entries[3].Line)
}

func TestParseFile_Missing(t *testing.T) {
	entries, err := ParseFile(filepath.Join(t.TempDir(), "no-such-service"), "trusty")
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseFiles_ConcatenatesWithoutDedup(t *testing.T) {
	dir := t.TempDir()
	general := writeManifest(t, dir, "general", "git\ncurl\n")
	keystone := writeManifest(t, dir, "keystone", "curl\nlibkrb5-dev # dist:trusty\n")

	entries, err := ParseFiles([]string{general, filepath.Join(dir, "missing"), keystone}, "trusty")
	require.NoError(t, err)
	assert.Equal(t, []string{"git", "curl", "curl", "libkrb5-dev"}, Names(entries))
}

func TestParseFile_Unreadable(t *testing.T) {
	dir := t.TempDir()
	_, err := ParseFile(dir, "trusty")
	assert.Error(t, err, "a directory is not a manifest")
}
