// Package main (goodvideos.go) :
// These methods are for downloading videos in a folder tree of Google Drive.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"golang.org/x/term"
	drive "google.golang.org/api/drive/v3"
)

const (
	appname          = "goodvideos"
	defaultDirectory = "descargas"
)

// para : Structure for each run
type para struct {
	cfg *config
	out io.Writer
	con prompter
	log logrus.FieldLogger
}

// authorize : Retrieve the service of Drive API. When the credentials file is not found, the steps for retrieving it are shown.
func (p *para) authorize(ctx context.Context) (*drive.Service, error) {
	a := &authenticator{
		credentialsFile: p.cfg.Credentials,
		tokenFile:       p.cfg.Token,
		out:             p.out,
		log:             p.log,
	}
	srv, err := a.authenticate(ctx)
	if errors.Is(err, errCredentialsMissing) {
		fmt.Fprintf(p.out, "Error: '%s' is not found.\n\n", p.cfg.Credentials)
		fmt.Fprintf(p.out, credentialsHelp, p.cfg.Credentials)
	}
	return srv, err
}

// folderID : Retrieve folder ID from the option or the inputted value.
func (p *para) folderID() (string, error) {
	input := p.cfg.URL
	if input == "" {
		var err error
		input, err = p.con.ask("\nEnter the URL or ID of the folder on Google Drive:\n> ")
		if err != nil {
			return "", err
		}
	}
	id, ok := extractFolderID(input)
	if !ok {
		return "", fmt.Errorf("%w: '%s'", errFolderID, input)
	}
	return id, nil
}

// downloadDirectory : Retrieve the directory for saving files from the option or the inputted value.
func (p *para) downloadDirectory() string {
	if p.cfg.Directory != "" {
		return p.cfg.Directory
	}
	dir, err := p.con.ask(fmt.Sprintf("\nEnter the download directory (Enter for '%s'): ", defaultDirectory))
	if err != nil || dir == "" {
		return defaultDirectory
	}
	return dir
}

// process : Retrieve videos from the folder, show them and download them.
func (p *para) process(ctx context.Context, srv *drive.Service) error {
	id, err := p.folderID()
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "\nFolder ID: %s\n", id)
	target := newClassifier(p.cfg.PDF, p.cfg.MimeTypes)
	if p.cfg.FileInf {
		return showFolderInf(p.out, srv, id, target.targetMimeTypes())
	}

	fmt.Fprintln(p.out, "\nSearching videos in the folder and subfolders...")
	w := &walker{
		srv:      srv,
		out:      p.out,
		log:      p.log,
		target:   target,
		pageSize: defaultPageSize,
		maxDepth: p.cfg.MaxDepth,
	}
	videos := w.listVideos(ctx, id, "")
	display(p.out, videos)
	if len(videos) == 0 {
		return nil
	}
	if !p.cfg.Yes {
		answer, err := p.con.ask("\nDo you want to download all videos? (s/n): ")
		if err != nil || !confirmed(answer) {
			fmt.Fprintln(p.out, "\nDownload was canceled.")
			return nil
		}
	}
	d := &downloader{
		srv:        srv,
		out:        p.out,
		log:        p.log,
		con:        p.con,
		chunkSize:  chunkSize,
		delay:      p.cfg.Delay,
		overWrite:  p.cfg.OverWrite,
		skip:       p.cfg.Skip,
		noProgress: p.cfg.NoProgress,
	}
	summary(p.out, d.downloadAll(ctx, videos, p.downloadDirectory()))
	return nil
}

// handler : Initialize of "para".
func handler(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.OverWrite && cfg.Skip {
		return errors.New("options '--overwrite' and '--skip' cannot be used together")
	}
	log, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		cfg.NoProgress = true
	}
	p := &para{
		cfg: cfg,
		out: os.Stdout,
		con: newConsole(os.Stdin, os.Stdout),
		log: log,
	}
	fmt.Printf("%s\n%s\n%s\n", strings.Repeat("=", 80), "Google Drive video downloader", strings.Repeat("=", 80))
	ctx := context.Background()
	srv, err := p.authorize(ctx)
	if err != nil {
		return err
	}
	return p.process(ctx, srv)
}

// createHelp : Create help document.
func createHelp() *cli.App {
	a := cli.NewApp()
	a.Name = appname
	a.Authors = []cli.Author{
		{Name: "tanaike [ https://github.com/tanaikech/" + appname + " ] ", Email: "tanaike@hotmail.com"},
	}
	a.UsageText = "Download all videos in a folder tree of Google Drive while keeping the folder structure."
	a.Version = "1.0.0"
	a.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "url, u",
			Usage: "URL or ID of the folder on Google Drive. When this is not used, it is asked at the terminal.",
		},
		cli.StringFlag{
			Name:  "directory, d",
			Usage: "Directory for saving downloaded files. When this is not used, it is asked at the terminal. The default is '" + defaultDirectory + "'.",
		},
		cli.StringFlag{
			Name:  "credentials, c",
			Usage: "OAuth client secret file of the installed app. The default is 'credentials.json'.",
		},
		cli.StringFlag{
			Name:  "token, t",
			Usage: "File for saving the token. The default is 'token.json'.",
		},
		cli.StringFlag{
			Name:  "mimetype, m",
			Usage: "mimeTypes which are downloaded in addition to videos. ex. '-m \"mimeType1,mimeType2\"'",
		},
		cli.BoolFlag{
			Name:  "pdf",
			Usage: "PDF files are also downloaded.",
		},
		cli.IntFlag{
			Name:  "maxdepth",
			Usage: "Maximum depth of subfolders. The root folder is 0. At default, there is no limit.",
			Value: -1,
		},
		cli.DurationFlag{
			Name:  "delay",
			Usage: "Pause between downloads.",
			Value: defaultDelay,
		},
		cli.BoolFlag{
			Name:  "yes, y",
			Usage: "Start the download without the confirmation.",
		},
		cli.BoolFlag{
			Name:  "overwrite, o",
			Usage: "When filename of downloading file is existing in directory at local PC, overwrite it. At default, it is asked.",
		},
		cli.BoolFlag{
			Name:  "skip, s",
			Usage: "When filename of downloading file is existing in directory at local PC, skip it. At default, it is asked.",
		},
		cli.BoolFlag{
			Name:  "NoProgress, np",
			Usage: "When this option is used, the progression is not shown.",
		},
		cli.BoolFlag{
			Name:  "fileinf, i",
			Usage: "Retrieve the file list with the folder structure as JSON. Files are not downloaded.",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "Config file (json, yaml or toml). Keys are the same as the names of options.",
		},
		cli.StringFlag{
			Name:  "logfile",
			Usage: "File for saving logs as JSON.",
		},
		cli.IntFlag{
			Name:  "logfilesize",
			Usage: "Maximum size of the log file in MB.",
			Value: 10,
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "Show debug logs.",
		},
	}
	return a
}

// main : Main of this script
func main() {
	a := createHelp()
	a.Action = handler
	err := a.Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
