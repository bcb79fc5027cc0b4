package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"mime"
	"path"
	"strings"
)

// Artifact file names stored under results/<result id>/.
const (
	MaskFile     = "mask.png"
	OriginalFile = "original.png"
)

// Artifacts are the object keys written for one result.
type Artifacts struct {
	MaskKey     string
	OriginalKey string
}

// ArtifactKey returns the object key of file for resultID.
func ArtifactKey(resultID, file string) string {
	return path.Join("results", resultID, file)
}

// SaveArtifacts encodes mask and original as PNG and stores both. Nothing
// is left behind when either write fails.
func SaveArtifacts(ctx context.Context, s Store, resultID string, mask, original image.Image) (Artifacts, error) {
	if !validResultID(resultID) {
		return Artifacts{}, fmt.Errorf("invalid result id %q", resultID)
	}
	a := Artifacts{
		MaskKey:     ArtifactKey(resultID, MaskFile),
		OriginalKey: ArtifactKey(resultID, OriginalFile),
	}
	if err := writePNG(ctx, s, a.MaskKey, mask); err != nil {
		return Artifacts{}, fmt.Errorf("failed to save mask: %w", err)
	}
	if err := writePNG(ctx, s, a.OriginalKey, original); err != nil {
		return Artifacts{}, errors.Join(fmt.Errorf("failed to save original: %w", err), s.DeleteFile(ctx, a.MaskKey))
	}
	return a, nil
}

// DeleteArtifacts removes both artifacts of resultID.
func DeleteArtifacts(ctx context.Context, s Store, resultID string) error {
	if !validResultID(resultID) {
		return nil
	}
	return errors.Join(
		s.DeleteFile(ctx, ArtifactKey(resultID, MaskFile)),
		s.DeleteFile(ctx, ArtifactKey(resultID, OriginalFile)),
	)
}

// Open returns the stored artifact file of resultID. Unknown ids and file
// names yield ErrNotFound.
func Open(ctx context.Context, s Store, resultID, file string) (*File, error) {
	if !validResultID(resultID) || (file != MaskFile && file != OriginalFile) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, resultID, file)
	}
	return s.ReadFile(ctx, ArtifactKey(resultID, file))
}

func writePNG(ctx context.Context, s Store, key string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return WriteFile(ctx, s, key, &buf)
}

func validResultID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..")
}

func contentType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
