// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload is one file received from a client.
type Upload struct {
	Filename string
	Body     io.Reader
}

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// gameExt validates a playable game upload and returns its extension.
func gameExt(u *Upload) (string, error) {
	if u == nil || u.Filename == "" {
		return "", Invalid("请上传游戏文件")
	}
	if strings.ToLower(filepath.Ext(u.Filename)) != ".html" {
		return "", Invalid("游戏文件必须是 HTML 格式")
	}
	return ".html", nil
}

// imageExt validates a thumbnail upload and returns its lowercased
// extension.
func imageExt(u *Upload) (string, error) {
	if u == nil || u.Filename == "" {
		return "", Invalid("请上传缩略图")
	}
	ext := strings.ToLower(filepath.Ext(u.Filename))
	if !imageExts[ext] {
		return "", Invalid("缩略图必须是图片格式（PNG/JPG/GIF/WEBP）")
	}
	return ext, nil
}

// writeAsset stores body under dir with a random name and returns the name.
func writeAsset(dir, ext string, body io.Reader) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create asset dir: %w", err)
	}
	name := strings.ReplaceAll(uuid.NewString(), "-", "") + ext

	f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create asset: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write asset: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close asset: %w", err)
	}
	return name, nil
}

// removeAsset deletes the file a media reference points at inside dir.
// Only the base name of ref is used. A missing file is not an error.
func removeAsset(dir, ref string) error {
	if ref == "" {
		return nil
	}
	name := path.Base(ref)
	if name == "." || name == "/" || name == ".." {
		return nil
	}
	err := os.Remove(filepath.Join(dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove asset: %w", err)
	}
	return nil
}

// discardAsset removes an asset that no record references any more.
// Failures only leave an orphaned file, so they are logged.
func discardAsset(dir, ref string) {
	if err := removeAsset(dir, ref); err != nil {
		slog.Warn("orphaned asset left on disk", "dir", dir, "ref", ref, "error", err)
	}
}

// GameRef and ImageRef build the public media URLs of stored assets.
func GameRef(folder, name string) string  { return "/media/games/" + folder + "/" + name }
func ImageRef(folder, name string) string { return "/media/images/" + folder + "/" + name }
