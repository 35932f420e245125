// Package main (folderid.go) :
// These methods are for retrieving the folder ID from an inputted URL or ID.
package main

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

const folderIDLength = 33

var errFolderID = errors.New("folder ID cannot be retrieved from the inputted value")

// extractFolderID : Retrieve folder ID from URL of folder or folder ID.
func extractFolderID(s string) (string, bool) {
	var id string
	switch {
	case strings.Contains(s, "/folders/"):
		id = s[strings.LastIndex(s, "/folders/")+len("/folders/"):]
		id = strings.SplitN(id, "?", 2)[0]
		id = strings.SplitN(id, "/", 2)[0]
	case isRawFolderID(s):
		id = s
	case strings.Contains(s, "drive.google.com"):
		parts := strings.Split(s, "/")
		for i, e := range parts {
			if e == "folders" {
				if i+1 < len(parts) {
					id = strings.SplitN(parts[i+1], "?", 2)[0]
				}
				break
			}
		}
	}
	return id, id != ""
}

// isRawFolderID : Check whether s looks like a bare folder ID.
func isRawFolderID(s string) bool {
	if utf8.RuneCountInString(s) != folderIDLength {
		return false
	}
	alnum := false
	for _, r := range s {
		switch {
		case r == '-' || r == '_':
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			alnum = true
		default:
			return false
		}
	}
	return alnum
}
