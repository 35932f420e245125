// Package main (presenter.go) :
// These methods are for showing the retrieved videos and the result of download.
package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// formatSize : Convert bytes to a human readable size using 1024 as the base.
func formatSize(size int64) string {
	s := float64(size)
	for _, unit := range sizeUnits {
		if s < 1024 {
			return fmt.Sprintf("%.2f %s", s, unit)
		}
		s /= 1024
	}
	return fmt.Sprintf("%.2f PB", s)
}

// folderGroup : Videos in the same folder path.
type folderGroup struct {
	Path   string
	Videos []video
	Size   int64
}

// groupByFolder : Group videos by the folder path. The order of folders is the order of first appearance.
func groupByFolder(videos []video) []folderGroup {
	index := map[string]int{}
	var groups []folderGroup
	for _, v := range videos {
		i, ok := index[v.FolderPath]
		if !ok {
			i = len(groups)
			index[v.FolderPath] = i
			groups = append(groups, folderGroup{Path: v.FolderPath})
		}
		groups[i].Videos = append(groups[i].Videos, v)
		groups[i].Size += v.Size
	}
	return groups
}

// display : Show the list of videos grouped by folder.
func display(out io.Writer, videos []video) {
	if len(videos) == 0 {
		fmt.Fprintln(out, "\nNo videos found in the given folder.")
		return
	}
	rule := strings.Repeat("=", 80)
	groups := groupByFolder(videos)
	var total int64
	for _, g := range groups {
		total += g.Size
	}
	fmt.Fprintf(out, "\n%s\nVIDEOS TO DOWNLOAD\n%s\n\n", rule, rule)
	st := [][]string{
		{"Total videos", strconv.Itoa(len(videos))},
		{"Total size", formatSize(total)},
		{"Folders", strconv.Itoa(len(groups))},
	}
	fmt.Fprintf(out, "%s\n", getMsg(setIndent(st, 0), " : "))
	for _, g := range groups {
		fmt.Fprintf(out, "\n%s (%d videos, %s)\n%s\n", g.Path, len(g.Videos), formatSize(g.Size), strings.Repeat("-", 80))
		for i, v := range g.Videos {
			fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, v.Name, formatSize(v.Size))
		}
	}
	fmt.Fprintf(out, "\n%s\n", rule)
}

// summary : Show the result of downloading.
func summary(out io.Writer, r downloadResult) {
	rule := strings.Repeat("=", 80)
	st := [][]string{
		{"Downloaded", strconv.Itoa(r.Downloaded)},
		{"Failed", strconv.Itoa(r.Failed)},
		{"Skipped", strconv.Itoa(r.Skipped)},
		{"Location", r.BasePath},
	}
	fmt.Fprintf(out, "\n%s\nDOWNLOAD SUMMARY\n%s\n%s\n%s\n", rule, rule, getMsg(setIndent(st, 0), " : "), rule)
}

// setIndent : Set indent of each element using the maximum length of element.
// st is 2 dimensional array including values.
// k is the index of each element for setting indent.
func setIndent(st [][]string, k int) [][]string {
	maxLen := 0
	for _, e := range st {
		if len(e[k]) > maxLen {
			maxLen = len(e[k])
		}
	}
	for i, e := range st {
		st[i][k] = e[k] + strings.Repeat(" ", maxLen-len(e[k]))
	}
	return st
}

// getMsg : Convert 2D array to string using delimiter.
func getMsg(st [][]string, delim string) string {
	var temp []string
	for _, e := range st {
		temp = append(temp, strings.Join(e, delim))
	}
	return strings.Join(temp, "\n")
}
