// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logscan extracts references to missing input files from a TeX
// build log.
//
// The grammar is best effort and recognises two notices:
//
//	<any prefix>Error: File `name' not found.
//	<use name>
//
// The opening quote of the first form may be a backtick or an apostrophe.
// Names containing an apostrophe or '>' are not recognised.
package logscan

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// notice matches either form. Exactly one of the two groups is set.
var notice = regexp.MustCompile(
	"Error:\\s+File\\s+[`'](?P<missing>[^']+)'\\s+not\\s+found\\." +
		`|<use\s+(?P<used>[^>]+)>`)

// unwrap removes the hard line breaks TeX inserts at its line length limit,
// which may fall in the middle of a file name.
var unwrap = strings.NewReplacer("\r\n", "", "\n", "")

// Scan returns the file names referenced by missing-file notices in text,
// in log order. Duplicates are kept.
func Scan(text string) []string {
	text = unwrap.Replace(text)

	var names []string
	for _, m := range notice.FindAllStringSubmatch(text, -1) {
		switch {
		case m[1] != "":
			names = append(names, m[1])
		case m[2] != "":
			names = append(names, m[2])
		}
	}
	return names
}

// ScanReader reads the whole log from r and scans it.
func ScanReader(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	return Scan(string(data)), nil
}

// ScanFile reads the log at path and scans it.
func ScanFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading log %s: %w", path, err)
	}
	return Scan(string(data)), nil
}
