package installer

import (
	"regexp"
)

// Classification is the outcome of one package manager invocation.
type Classification int

const (
	Success Classification = iota
	// Retryable failures may be transient, such as a stale mirror.
	Retryable
	// Fatal failures show a package genuinely failed and are never retried.
	Fatal
)

func (c Classification) String() string {
	switch c {
	case Success:
		return "success"
	case Retryable:
		return "retryable"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// OutputPatterns is a versioned table of output lines that mark an install
// as fatal regardless of the exit status. yum -y treats missing and failed
// packages as acceptable and may exit 0, so its text is the only signal.
// Patterns match untranslated English output only.
type OutputPatterns struct {
	Version string
	Fatal   []*regexp.Regexp
}

// YumOutputPatterns is the table applied to yum and dnf output.
var YumOutputPatterns = OutputPatterns{
	Version: "v1",
	Fatal: []*regexp.Regexp{
		regexp.MustCompile(`(?m)^No package`),
		regexp.MustCompile(`(?m)^Failed:`),
	},
}

// FatalLine returns the first output line matching a fatal pattern.
func (p OutputPatterns) FatalLine(output string) (string, bool) {
	for _, re := range p.Fatal {
		if loc := re.FindStringIndex(output); loc != nil {
			end := loc[0]
			for end < len(output) && output[end] != '\n' {
				end++
			}
			return output[loc[0]:end], true
		}
	}
	return "", false
}

// ClassifyOutput classifies a yum style run: a fatal output line wins over
// any exit status, otherwise a failed run is retryable.
func ClassifyOutput(p OutputPatterns, output string, runErr error) Classification {
	if _, fatal := p.FatalLine(output); fatal {
		return Fatal
	}
	return ClassifyExit(runErr)
}

// ClassifyExit classifies a run by its exit status alone.
func ClassifyExit(runErr error) Classification {
	if runErr != nil {
		return Retryable
	}
	return Success
}
