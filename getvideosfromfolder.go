// Package main (getvideosfromfolder.go) :
// These methods are for retrieving all videos from a folder and its subfolders of Google Drive.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

const (
	folderMimeType  = "application/vnd.google-apps.folder"
	videoPrefix     = "video/"
	defaultPageSize = 100
	listFields      = "nextPageToken, files(id, name, mimeType, size, webViewLink)"
)

var videoMimeTypes = []string{
	"video/mp4", "video/avi", "video/mkv", "video/mov",
	"video/wmv", "video/flv", "video/webm", "video/quicktime",
	"video/x-msvideo", "video/x-matroska", "video/x-ms-wmv",
}

var pdfMimeTypes = []string{
	"application/pdf", "application/x-pdf", "application/acrobat",
	"applications/vnd.pdf", "text/pdf", "text/x-pdf",
}

// video : Structure for a video found in the folder tree
type video struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MimeType    string `json:"mimeType"`
	Size        int64  `json:"size"`
	FolderPath  string `json:"folderPath"`
	WebViewLink string `json:"webViewLink,omitempty"`
}

// classifier : Decide which files are collected.
type classifier struct {
	mimeTypes map[string]bool
}

// newClassifier : Create classifier. Extra mimeTypes are added to the list of videos.
func newClassifier(includePDF bool, extra []string) *classifier {
	c := &classifier{mimeTypes: map[string]bool{}}
	for _, m := range videoMimeTypes {
		c.mimeTypes[m] = true
	}
	if includePDF {
		for _, m := range pdfMimeTypes {
			c.mimeTypes[m] = true
		}
	}
	for _, m := range extra {
		if m = strings.TrimSpace(m); m != "" {
			c.mimeTypes[m] = true
		}
	}
	return c
}

func (c *classifier) match(mimeType string) bool {
	return strings.HasPrefix(mimeType, videoPrefix) || c.mimeTypes[mimeType]
}

// walker : Structure for retrieving videos from a folder tree
type walker struct {
	srv      *drive.Service
	out      io.Writer
	log      logrus.FieldLogger
	target   *classifier
	pageSize int64
	maxDepth int
}

// folderName : Retrieve name of folder. When it cannot be retrieved, a placeholder is used.
func (w *walker) folderName(ctx context.Context, folderID string) string {
	f, err := w.srv.Files.Get(folderID).Fields("name").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil || f.Name == "" {
		w.log.WithField("folder", folderID).Debugf("Folder name cannot be retrieved: %v", err)
		return "Folder_" + folderID
	}
	return f.Name
}

// listVideos : Retrieve videos in the folder and all subfolders. An error at a folder yields no videos for the folder.
func (w *walker) listVideos(ctx context.Context, folderID, parentPath string) []video {
	return w.walk(ctx, folderID, parentPath, 0)
}

func (w *walker) walk(ctx context.Context, folderID, parentPath string, depth int) []video {
	if w.maxDepth >= 0 && depth > w.maxDepth {
		w.log.WithField("folder", parentPath).Warnf("Maximum depth %d was reached. Subfolder '%s' is skipped.", w.maxDepth, folderID)
		return nil
	}
	name := w.folderName(ctx, folderID)
	currentPath := name
	if parentPath != "" {
		currentPath = parentPath + "/" + name
	}
	fmt.Fprintf(w.out, "Exploring folder: %s\n", currentPath)

	pageSize := w.pageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	var found []video
	call := w.srv.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false", folderID)).
		PageSize(pageSize).
		Fields(googleapi.Field(listFields)).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true)
	pageToken := ""
	for {
		if pageToken != "" {
			call.PageToken(pageToken)
		}
		res, err := call.Context(ctx).Do()
		if err != nil {
			w.log.WithFields(logrus.Fields{"folder": folderID, "code": errorCode(err)}).Errorf("Error at accessing folder '%s': %v", currentPath, err)
			return nil
		}
		for _, item := range res.Files {
			switch {
			case item.MimeType == folderMimeType:
				found = append(found, w.walk(ctx, item.Id, currentPath, depth+1)...)
			case w.target.match(item.MimeType):
				v := video{
					ID:          item.Id,
					Name:        item.Name,
					MimeType:    item.MimeType,
					Size:        item.Size,
					FolderPath:  currentPath,
					WebViewLink: item.WebViewLink,
				}
				found = append(found, v)
				fmt.Fprintf(w.out, "  Video found: %s (%s)\n", v.Name, formatSize(v.Size))
			}
		}
		pageToken = res.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return found
}

// errorCode : Retrieve status code from an error of Drive API.
func errorCode(err error) int {
	var e *googleapi.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}
