// Package main (chunkeddownload.go) :
// These methods are for downloading videos from Google Drive by chunks while keeping the folder structure.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	drive "google.golang.org/api/drive/v3"
)

const (
	chunkSize    = 1024 * 1024
	defaultDelay = 500 * time.Millisecond
)

// fileState : State of each file in a batch download
type fileState int

const (
	statePending fileState = iota
	stateDownloading
	stateCompleted
	stateFailed
	stateSkipped
)

func (s fileState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateDownloading:
		return "downloading"
	case stateCompleted:
		return "completed"
	case stateFailed:
		return "failed"
	case stateSkipped:
		return "skipped"
	}
	return "unknown"
}

// downloadResult : Result of a batch download
type downloadResult struct {
	Downloaded int
	Failed     int
	Skipped    int
	BasePath   string
}

// downloader : Structure for downloading files
type downloader struct {
	srv        *drive.Service
	out        io.Writer
	log        logrus.FieldLogger
	con        prompter
	chunkSize  int64
	delay      time.Duration
	overWrite  bool
	skip       bool
	noProgress bool
}

// progress : Show the progression of a download.
type progress struct {
	out   io.Writer
	total int64
	done  int64
	quiet bool
}

func (p *progress) add(n int64) {
	p.done += n
	if p.quiet {
		return
	}
	if p.total > 0 {
		fmt.Fprintf(p.out, "\r  Downloading: %d%% (%s/%s)", p.done*100/p.total, formatSize(p.done), formatSize(p.total))
	} else {
		fmt.Fprintf(p.out, "\r  Downloading: %s", formatSize(p.done))
	}
}

// copyChunks : Copy src to dst by chunks with the size of buf. report is called after each chunk.
func copyChunks(dst io.Writer, src io.Reader, buf []byte, report func(int64)) (int64, error) {
	var written int64
	for {
		n, err := io.ReadFull(src, buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, werr
			}
			written += int64(n)
			report(int64(n))
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}

// get : Request the content of file. When byteRange is not empty, it is used as the Range header.
func (d *downloader) get(ctx context.Context, id, byteRange string) (*http.Response, error) {
	call := d.srv.Files.Get(id).SupportsAllDrives(true).Context(ctx)
	if byteRange != "" {
		call.Header().Set("Range", byteRange)
	}
	return call.Download()
}

// fetch : Download file to destination by chunks.
func (d *downloader) fetch(ctx context.Context, id, destination string) (err error) {
	meta, err := d.srv.Files.Get(id).Fields("size").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("retrieving file information: %w", err)
	}
	size := d.chunkSize
	if size <= 0 {
		size = chunkSize
	}
	file, err := os.Create(destination)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	buf := make([]byte, size)
	p := &progress{out: d.out, total: meta.Size, quiet: d.noProgress}
	if meta.Size <= 0 {
		res, err := d.get(ctx, id, "")
		if err != nil {
			return err
		}
		defer res.Body.Close()
		_, err = copyChunks(file, res.Body, buf, p.add)
		return err
	}
	for start := int64(0); start < meta.Size; {
		end := start + size - 1
		if end >= meta.Size {
			end = meta.Size - 1
		}
		res, err := d.get(ctx, id, fmt.Sprintf("bytes=%d-%d", start, end))
		if err != nil {
			return err
		}
		if res.StatusCode == http.StatusOK && start > 0 {
			res.Body.Close()
			return errors.New("range request was not accepted")
		}
		n, err := copyChunks(file, res.Body, buf, p.add)
		res.Body.Close()
		if err != nil {
			return err
		}
		if res.StatusCode == http.StatusOK {
			return nil
		}
		if n == 0 {
			return fmt.Errorf("empty response for bytes %d-%d", start, end)
		}
		start += n
	}
	return nil
}

// downloadFile : Download a file. The result is returned as bool and errors are logged.
func (d *downloader) downloadFile(ctx context.Context, id, name, destination string) bool {
	if err := d.fetch(ctx, id, destination); err != nil {
		os.Remove(destination)
		fmt.Fprintf(d.out, "\r  Error at downloading %s\n", name)
		d.log.WithFields(logrus.Fields{"file": id, "code": errorCode(err)}).Errorf("Downloading '%s' failed: %v", name, err)
		return false
	}
	fmt.Fprintf(d.out, "\r  Downloaded: %s\n", name)
	return true
}

// chkFile : Check the existence of file and directory in local PC.
func chkFile(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

// localName : Filename which can be used at local PC. "." and ".." are replaced, so the name never points to other directories.
func localName(name string) string {
	name = strings.NewReplacer("/", "_", string(os.PathSeparator), "_").Replace(name)
	switch name {
	case "":
		return "_"
	case ".", "..":
		return strings.Repeat("_", len(name))
	}
	return name
}

// localDir : Directory at local PC for the folder path. Each folder name is converted by localName and the directory is always under base.
func localDir(base, folderPath string) (string, error) {
	elems := []string{base}
	if folderPath != "" {
		for _, e := range strings.Split(folderPath, "/") {
			elems = append(elems, localName(e))
		}
	}
	dir := filepath.Join(elems...)
	rel, err := filepath.Rel(base, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("'%s' is not under '%s'", folderPath, base)
	}
	return dir, nil
}

// overWriteExisting : Decide whether an existing file is overwritten.
func (d *downloader) overWriteExisting(v video, path string) bool {
	switch {
	case d.overWrite:
		return true
	case d.skip:
		return false
	}
	fmt.Fprintf(d.out, "\nFile already exists: %s\n  Location: %s\n", v.Name, path)
	answer, err := d.con.ask("  Overwrite? (s/n): ")
	if err != nil {
		d.log.WithField("file", v.ID).Debugf("No answer: %v", err)
		return false
	}
	return confirmed(answer)
}

// downloadVideo : Download a video to the folder under base. The final state of the file is returned.
func (d *downloader) downloadVideo(ctx context.Context, v video, base string, idx, total int) fileState {
	dir, err := localDir(base, v.FolderPath)
	if err != nil {
		d.log.WithField("file", v.ID).Errorf("Folder of '%s' cannot be used: %v", v.Name, err)
		return stateFailed
	}
	if err := os.MkdirAll(dir, 0777); err != nil {
		d.log.WithField("file", v.ID).Errorf("Creating '%s' failed: %v", dir, err)
		return stateFailed
	}
	path := filepath.Join(dir, localName(v.Name))
	if chkFile(path) && !d.overWriteExisting(v, path) {
		fmt.Fprintf(d.out, "  Skipped: %s\n", v.Name)
		return stateSkipped
	}
	fmt.Fprintf(d.out, "\n[%d/%d] %s\n  Folder: %s\n", idx, total, v.Name, v.FolderPath)
	state := stateDownloading
	d.log.WithField("file", v.ID).Debugf("%s: %s", state, path)
	if d.downloadFile(ctx, v.ID, v.Name, path) {
		state = stateCompleted
	} else {
		state = stateFailed
	}
	time.Sleep(d.delay)
	return state
}

// downloadAll : Download all videos under base while keeping the folder structure.
func (d *downloader) downloadAll(ctx context.Context, videos []video, base string) downloadResult {
	r := downloadResult{BasePath: base}
	if abs, err := filepath.Abs(base); err == nil {
		r.BasePath = abs
	}
	if len(videos) == 0 {
		fmt.Fprintln(d.out, "\nThere are no videos to download.")
		return r
	}
	fmt.Fprintf(d.out, "\nStarting download in: %s\n", base)
	if err := os.MkdirAll(base, 0777); err != nil {
		d.log.Errorf("Creating '%s' failed: %v", base, err)
	}
	for i, v := range videos {
		switch d.downloadVideo(ctx, v, base, i+1, len(videos)) {
		case stateCompleted:
			r.Downloaded++
		case stateFailed:
			r.Failed++
		case stateSkipped:
			r.Skipped++
		}
	}
	return r
}
