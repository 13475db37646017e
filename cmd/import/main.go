// Command import adds files to the local media store so cmd/server can serve
// them. Point it at the same DATABASE_URL and STORAGE_URL as the server; the
// memory defaults do not outlive the process.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/tendant/simple-media/pkg/simplemedia"
	"github.com/tendant/simple-media/pkg/simplemedia/config"
	"github.com/tendant/simple-media/pkg/simplemedia/mediarepo"
)

func main() {
	filePath := flag.String("file", "", "File to import (required)")
	mediaID := flag.String("media-id", "", "Media id to store under (default: generated)")
	mediaType := flag.String("media-type", "", "Content type (default: sniffed from the file)")
	name := flag.String("name", "", "Upload name (default: the file's base name)")
	userID := flag.String("user", "", "Uploading user id")
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "import: -file is required")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(*filePath, importOptions{
		MediaID:   *mediaID,
		MediaType: *mediaType,
		Name:      *name,
		UserID:    *userID,
	}); err != nil {
		slog.Error("import failed", "file", *filePath, "error", err)
		os.Exit(1)
	}
}

type importOptions struct {
	MediaID   string
	MediaType string
	Name      string
	UserID    string
}

func run(filePath string, opts importOptions) error {
	cfg, err := config.Load(config.WithDotEnv(".env"), config.WithEnv())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := cfg.NewLogger(os.Stderr)

	ctx := context.Background()
	repo, closeRepo, err := cfg.BuildRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	store, err := cfg.BuildBlobStore()
	if err != nil {
		return err
	}

	svc, err := mediarepo.New(
		mediarepo.WithRepository(repo),
		mediarepo.WithBlobStore(store),
		mediarepo.WithLogger(logger),
		mediarepo.WithMaxUploadSize(cfg.MaxUploadSize),
	)
	if err != nil {
		return err
	}

	media, err := importFile(ctx, svc, filePath, opts)
	if err != nil {
		return err
	}

	fmt.Printf("mxc://%s/%s\n", cfg.ServerName, media.MediaID)
	return nil
}

func importFile(ctx context.Context, svc *mediarepo.Service, filePath string, opts importOptions) (*simplemedia.LocalMedia, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mediaType := opts.MediaType
	if mediaType == "" {
		mtype, err := mimetype.DetectReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to detect content type: %w", err)
		}
		mediaType = mtype.String()
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(filePath)
	}

	return svc.StoreLocalMedia(ctx, mediarepo.StoreLocalMediaRequest{
		MediaID:    opts.MediaID,
		MediaType:  mediaType,
		UploadName: name,
		UserID:     opts.UserID,
		Body:       f,
	})
}
