// Package main (fileinf.go) :
// These methods are for showing the folder tree and the videos in it as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	getfilelist "github.com/tanaikech/go-getfilelist"
	drive "google.golang.org/api/drive/v3"
)

// showFolderInf : Retrieve the file list with the folder structure and show it as JSON.
func showFolderInf(out io.Writer, srv *drive.Service, folderID string, mimeTypes []string) error {
	fileList, err := getfilelist.Folder(folderID).MimeType(mimeTypes).Do(srv)
	if err != nil {
		return fmt.Errorf("retrieving file list of '%s': %w", folderID, err)
	}
	r, err := json.Marshal(fileList)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n", r)
	return nil
}

// targetMimeTypes : mimeTypes of the classifier as a list.
func (c *classifier) targetMimeTypes() []string {
	var list []string
	for m := range c.mimeTypes {
		list = append(list, m)
	}
	sort.Strings(list)
	return list
}
