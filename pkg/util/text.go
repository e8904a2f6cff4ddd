package util

import (
	"strings"

	"github.com/common-nighthawk/go-figure"
)

func GenerateASCIIArt(text string, font string) string {
	myFigure := figure.NewFigure(text, font, true)
	return myFigure.String()
}

// Banner renders name as ASCII art followed by a version line.
func Banner(name, version string) string {
	art := strings.TrimRight(GenerateASCIIArt(name, "standard"), "\n ")
	return art + "\n" + strings.Repeat(" ", 2) + name + " " + version + "\n"
}
