/*
Package main (doc.go) :
This is a CLI tool to download all videos in a folder tree of Google Drive while keeping the folder structure.

goodvideos walks a folder and all of its subfolders with Drive API, collects the video files, shows them grouped by folder and downloads them to the local PC. The folder structure is rebuilt under the download directory. This tool has the following features.

- Authorize with OAuth2 (read only scope). The token is saved and reused at the next run.

- Retrieve videos from a folder and its subfolders. An error at one folder doesn't stop the others.

- Download each file in chunks of 1 MB and show the progression.

- When a file is existing in the download directory, ask whether it should be overwritten.

- By using the option '--fileinf', the folder tree can be retrieved as JSON.

---------------------------------------------------------------

# How to Install

$ go get -u github.com/tanaikech/goodvideos

# Usage
Put credentials.json (OAuth client ID for "Desktop app") in the working directory and run

$ goodvideos -u [URL of folder on Google Drive]

At the first run, please open the URL shown in the terminal and authorize the scope.

---------------------------------------------------------------
*/
package main
