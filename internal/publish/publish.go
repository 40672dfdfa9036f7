package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"freestyle/internal/fileutil"
	"freestyle/internal/logging"
	"freestyle/internal/manifest"
	"freestyle/internal/services"
)

// MappingFilename is written beside the manifest.
const MappingFilename = "asset-urls.json"

var contentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Options locates the files to publish.
type Options struct {
	AssetsDir     string
	CollectionDir string
	ManifestPath  string
	// DryRun lists the files without uploading or rewriting.
	DryRun bool
}

// Upload is one attempted object.
type Upload struct {
	LocalPath string
	Object    string
	URL       string
	Err       error
}

// Report summarizes a publish run.
type Report struct {
	Uploads     []Upload
	Uploaded    int
	Failed      int
	Rewritten   int
	MappingPath string
}

// Publisher runs uploads through an Uploader.
type Publisher struct {
	uploader Uploader
	logger   *slog.Logger
}

// New constructs a Publisher.
func New(uploader Uploader, logger *slog.Logger) *Publisher {
	return &Publisher{uploader: uploader, logger: logging.NewComponentLogger(logger, "publish")}
}

// Run uploads every media file under the collection directory and rewrites
// the manifest to the returned URLs.
func (p *Publisher) Run(ctx context.Context, opts Options) (Report, error) {
	files, err := MediaFiles(opts.CollectionDir)
	if err != nil {
		return Report{}, err
	}
	p.logger.Info("publishing assets", logging.Int("files", len(files)), logging.Bool("dry_run", opts.DryRun))

	report := Report{}
	urls := make(map[string]string, len(files))
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		rel, err := filepath.Rel(opts.AssetsDir, file)
		if err != nil {
			return report, fmt.Errorf("relative path for %s: %w", file, err)
		}
		rel = filepath.ToSlash(rel)
		up := Upload{
			LocalPath: path.Join(manifest.AssetsPrefix, rel),
			Object:    path.Join("assets", rel),
		}
		if opts.DryRun {
			report.Uploads = append(report.Uploads, up)
			continue
		}

		up.URL, up.Err = p.uploadOne(ctx, file, up.Object)
		if up.Err != nil {
			report.Failed++
			logging.WarnWithContext(p.logger, "upload failed", "upload_failed",
				logging.String("object", up.Object),
				logging.Error(up.Err),
				logging.String(logging.FieldImpact, "manifest keeps the local path for this file"),
				logging.String(logging.FieldErrorHint, "check the bucket exists and the key can write to it"),
			)
		} else {
			report.Uploaded++
			urls[up.LocalPath] = up.URL
			p.logger.Info(fmt.Sprintf("[%d/%d] uploaded %s", i+1, len(files), rel))
		}
		report.Uploads = append(report.Uploads, up)
	}
	if opts.DryRun || len(urls) == 0 {
		return report, nil
	}

	report.MappingPath = filepath.Join(filepath.Dir(opts.ManifestPath), MappingFilename)
	if err := writeMapping(report.MappingPath, urls); err != nil {
		return report, err
	}

	entries, err := manifest.Read(opts.ManifestPath)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			logging.WarnWithContext(p.logger, "manifest missing, nothing to rewrite", "manifest_missing",
				logging.String("path", opts.ManifestPath),
				logging.String(logging.FieldImpact, "uploaded URLs saved only to the mapping file"),
				logging.String(logging.FieldErrorHint, "run freestyle process before publish"),
			)
			return report, nil
		}
		return report, err
	}
	report.Rewritten = manifest.Rewrite(entries, urls)
	if err := manifest.Write(opts.ManifestPath, entries); err != nil {
		return report, err
	}
	p.logger.Info("publish complete",
		logging.Int("uploaded", report.Uploaded),
		logging.Int("failed", report.Failed),
		logging.Int("rewritten", report.Rewritten),
	)
	return report, nil
}

func (p *Publisher) uploadOne(ctx context.Context, file, object string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return p.uploader.Upload(ctx, object, ContentType(file), f)
}

// ContentType maps a publishable file to its MIME type.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// MediaFiles lists publishable files under root in lexical order. A missing
// root yields no files.
func MediaFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == root {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := contentTypes[strings.ToLower(filepath.Ext(d.Name()))]; ok {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

func writeMapping(path string, urls map[string]string) error {
	data, err := json.MarshalIndent(urls, "", "  ")
	if err != nil {
		return fmt.Errorf("encode url mapping: %w", err)
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}
