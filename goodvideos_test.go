package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

func newTestPara(cfg *config, answers ...string) (*para, *bytes.Buffer, *scriptedPrompter) {
	var out bytes.Buffer
	con := &scriptedPrompter{answers: answers}
	log, _ := test.NewNullLogger()
	cfg.MaxDepth = -1
	return &para{cfg: cfg, out: &out, con: con, log: log}, &out, con
}

func TestProcessDownloadsTree(t *testing.T) {
	f := courseTree()
	base := filepath.Join(t.TempDir(), "videos")
	p, out, con := newTestPara(&config{
		URL:        "https://drive.google.com/drive/folders/root?usp=sharing",
		Directory:  base,
		NoProgress: true,
	}, "s")
	if err := p.process(context.Background(), newFakeService(t, f)); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	for name, want := range map[string]string{
		"Course/a.mp4":               "aaaa",
		"Course/Week 1/b.mkv":        "bbbbbbbb",
		"Course/Week 2/Extra/c.webm": "cc",
		"Course/d.avi":               "d",
	} {
		b, err := os.ReadFile(filepath.Join(base, filepath.FromSlash(name)))
		if err != nil || string(b) != want {
			t.Fatalf("%s = %q, %v, want %q", name, b, err, want)
		}
	}
	if chkFile(filepath.Join(base, "Course", "Week 1", "notes.txt")) || chkFile(filepath.Join(base, "Course", "slides.pdf")) {
		t.Fatalf("files which are not videos were downloaded")
	}
	if len(con.asked) != 1 {
		t.Fatalf("asked = %q, want only the confirmation", con.asked)
	}
	for _, want := range []string{"Folder ID: root", "Total videos : 4", "Downloaded : 4", "Failed     : 0"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output does not contain %q:\n%s", want, out.String())
		}
	}
}

func TestProcessAsksFolderAndDirectory(t *testing.T) {
	base := filepath.Join(t.TempDir(), "asked")
	p, _, con := newTestPara(&config{NoProgress: true}, "https://drive.google.com/drive/folders/root", " S ", base)
	if err := p.process(context.Background(), newFakeService(t, courseTree())); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if len(con.asked) != 3 {
		t.Fatalf("asked = %q, want folder, confirmation and directory", con.asked)
	}
	if !chkFile(filepath.Join(base, "Course", "a.mp4")) {
		t.Fatalf("video was not downloaded to the inputted directory")
	}
}

func TestProcessInvalidFolder(t *testing.T) {
	f := newFakeDrive()
	p, _, _ := newTestPara(&config{URL: "https://example.com/nothing"})
	err := p.process(context.Background(), newFakeService(t, f))
	if !errors.Is(err, errFolderID) {
		t.Fatalf("process() error = %v, want errFolderID", err)
	}
	if f.listCount() != 0 {
		t.Fatalf("Drive API was called %d times", f.listCount())
	}
}

func TestProcessCanceled(t *testing.T) {
	for _, answer := range []string{"n", "y", "yes", ""} {
		t.Run(answer, func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "videos")
			p, out, _ := newTestPara(&config{URL: "https://drive.google.com/drive/folders/root", Directory: base}, answer)
			f := courseTree()
			if err := p.process(context.Background(), newFakeService(t, f)); err != nil {
				t.Fatalf("process() error = %v", err)
			}
			if chkFile(base) {
				t.Fatalf("download directory was created")
			}
			if len(f.mediaRequests()) != 0 {
				t.Fatalf("media requests = %q", f.mediaRequests())
			}
			if !strings.Contains(out.String(), "Download was canceled.") {
				t.Fatalf("output = %s", out.String())
			}
		})
	}
}

func TestProcessYes(t *testing.T) {
	base := filepath.Join(t.TempDir(), "videos")
	p, _, con := newTestPara(&config{
		URL:        "https://drive.google.com/drive/folders/root",
		Directory:  base,
		Yes:        true,
		NoProgress: true,
		PDF:        true,
	})
	if err := p.process(context.Background(), newFakeService(t, courseTree())); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if len(con.asked) != 0 {
		t.Fatalf("asked = %q, want nothing", con.asked)
	}
	if !chkFile(filepath.Join(base, "Course", "slides.pdf")) {
		t.Fatalf("PDF was not downloaded")
	}
}

func TestProcessEmptyFolder(t *testing.T) {
	f := newFakeDrive()
	f.addFolder("empty", "Empty", "")
	base := filepath.Join(t.TempDir(), "videos")
	p, out, con := newTestPara(&config{URL: "https://drive.google.com/drive/folders/empty", Directory: base})
	if err := p.process(context.Background(), newFakeService(t, f)); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if len(con.asked) != 0 || chkFile(base) {
		t.Fatalf("asked = %q, directory created = %v", con.asked, chkFile(base))
	}
	if !strings.Contains(out.String(), "No videos found in the given folder.") {
		t.Fatalf("output = %s", out.String())
	}
}

func TestAuthorizeCredentialsMissing(t *testing.T) {
	dir := t.TempDir()
	p, out, _ := newTestPara(&config{
		Credentials: filepath.Join(dir, "credentials.json"),
		Token:       filepath.Join(dir, "token.json"),
	})
	if _, err := p.authorize(context.Background()); !errors.Is(err, errCredentialsMissing) {
		t.Fatalf("authorize() error = %v, want errCredentialsMissing", err)
	}
	if !strings.Contains(out.String(), "credentials.json' is not found.") {
		t.Fatalf("output = %s", out.String())
	}
}

func TestCreateHelpFlagNames(t *testing.T) {
	seen := map[string]bool{"help": true, "h": true, "version": true, "v": true}
	for _, f := range createHelp().Flags {
		for _, name := range strings.Split(f.GetName(), ",") {
			name = strings.TrimSpace(name)
			if seen[name] {
				t.Fatalf("flag name %q is used twice", name)
			}
			seen[name] = true
		}
	}
	for _, k := range append(append(append(append([]string(nil), stringOptions...), boolOptions...), intOptions...), durationOptions...) {
		if !seen[k] {
			t.Fatalf("option %q has no flag", k)
		}
	}
}
