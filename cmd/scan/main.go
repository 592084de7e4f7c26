// Command scan walks a local directory with the file collector and uploads
// the batch to a running engine, replacing the target project's file set.
// It is the editor-extension stand-in for local use and CI.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/codelens/engine/internal/collector"
	"github.com/codelens/engine/pkg/logger"
)

func main() {
	var (
		root     = flag.String("root", ".", "directory to scan")
		server   = flag.String("server", "http://localhost:8080", "engine base URL")
		project  = flag.String("project", "", "target project id (required)")
		token    = flag.String("token", os.Getenv("CODELENS_TOKEN"), "bearer token (defaults to CODELENS_TOKEN)")
		maxFiles = flag.Int("max-files", 50, "maximum number of files to collect")
	)
	flag.Parse()

	log, err := logger.Init("info", "console")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if *project == "" {
		fmt.Fprintln(os.Stderr, "usage: scan -project <id> [-root dir] [-server url] [-token t]")
		os.Exit(2)
	}

	records, err := collector.New(log).Collect(*root, collector.Options{
		MaxFiles:     *maxFiles,
		MaxFileBytes: 1 << 20,
	})
	if err != nil {
		log.Fatal("scan failed", zap.Error(err))
	}
	if len(records) == 0 {
		log.Fatal("no source files found", zap.String("root", *root))
	}
	log.Info("collected files", zap.Int("count", len(records)), zap.String("root", *root))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, rec := range records {
		part, err := mw.CreateFormFile("files", rec.Path)
		if err != nil {
			log.Fatal("build multipart failed", zap.Error(err))
		}
		if _, err := io.Copy(part, strings.NewReader(rec.Content)); err != nil {
			log.Fatal("build multipart failed", zap.Error(err))
		}
	}
	if err := mw.Close(); err != nil {
		log.Fatal("build multipart failed", zap.Error(err))
	}

	url := fmt.Sprintf("%s/api/v1/projects/%s/upload", strings.TrimRight(*server, "/"), *project)
	req, err := http.NewRequest(http.MethodPost, url, &body)
	if err != nil {
		log.Fatal("build request failed", zap.Error(err))
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if *token != "" {
		req.Header.Set("Authorization", "Bearer "+*token)
	}

	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatal("upload failed", zap.Error(err))
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Fatal("upload rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
	}
	fmt.Println(string(respBody))
}
