package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	ErrDevBuild      = errors.New("cannot update a development build")
	ErrAlreadyLatest = errors.New("already running the latest version")
	ErrChecksum      = errors.New("checksum verification failed")
)

// binaryName is the executable inside every release archive; the
// Windows builds carry it with an .exe suffix.
const binaryName = "mathenique"

// UpdateInput selects the versions involved. An empty TargetVersion
// means whatever the latest release is.
type UpdateInput struct {
	CurrentVersion string
	TargetVersion  string
}

// UpdateProgress is one human-readable step of the update, fed to the
// caller's progress callback.
type UpdateProgress struct {
	Stage   string
	Message string
}

// Update replaces the running binary with a release build. The archive
// is verified against the release's checksums.txt before anything
// touches the filesystem, and the staged binary is verified again after
// the write.
func (c *Checker) Update(ctx context.Context, input *UpdateInput, report func(UpdateProgress)) error {
	if input.CurrentVersion == "(devel)" {
		return ErrDevBuild
	}

	tag := input.TargetVersion
	if tag == "" {
		report(UpdateProgress{Stage: "check", Message: "Checking for latest version..."})
		result, err := c.Check(ctx, &CheckInput{Version: input.CurrentVersion})
		if err != nil {
			return fmt.Errorf("check for updates: %w", err)
		}
		if !result.UpdateAvailable {
			return ErrAlreadyLatest
		}
		tag = result.LatestVersion
	}

	asset, err := releaseAsset(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return err
	}
	c.log.Debug("update starting", "tag", tag, "asset", asset)

	report(UpdateProgress{Stage: "download", Message: fmt.Sprintf("Downloading %s...", tag)})
	archive, err := c.fetchReleaseFile(ctx, tag, asset)
	if err != nil {
		return fmt.Errorf("download archive: %w", err)
	}

	report(UpdateProgress{Stage: "verify", Message: "Verifying checksum..."})
	sums, err := c.fetchReleaseFile(ctx, tag, "checksums.txt")
	if err != nil {
		return fmt.Errorf("download checksums: %w", err)
	}
	want, ok := checksumIndex(sums)[asset]
	if !ok {
		return fmt.Errorf("checksums.txt has no entry for %s", asset)
	}
	if err := matchChecksum(archive, want); err != nil {
		return err
	}

	report(UpdateProgress{Stage: "extract", Message: "Extracting binary..."})
	binary, err := unpackBinary(archive, asset)
	if err != nil {
		return fmt.Errorf("extract binary: %w", err)
	}

	report(UpdateProgress{Stage: "apply", Message: "Applying update..."})
	target, err := c.execPath()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}
	if err := swapBinary(target, binary); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}
	c.log.Info("binary replaced", "path", target, "version", tag)

	report(UpdateProgress{Stage: "done", Message: fmt.Sprintf("Updated to %s", tag)})
	return nil
}

// releaseArch maps GOARCH onto the goreleaser archive naming.
var releaseArch = map[string]string{
	"amd64": "x86_64",
	"arm64": "arm64",
	"386":   "i386",
}

// releaseAsset names the archive published for a platform. Darwin ships
// a single universal build.
func releaseAsset(goos, goarch string) (string, error) {
	if goos == "darwin" {
		return binaryName + "_Darwin_all.tar.gz", nil
	}
	arch, ok := releaseArch[goarch]
	if !ok {
		return "", fmt.Errorf("no release build for architecture %s", goarch)
	}
	switch goos {
	case "linux":
		return binaryName + "_Linux_" + arch + ".tar.gz", nil
	case "windows":
		return binaryName + "_Windows_" + arch + ".zip", nil
	}
	return "", fmt.Errorf("no release build for %s", goos)
}

// fetchReleaseFile downloads one file attached to a release tag.
func (c *Checker) fetchReleaseFile(ctx context.Context, tag, name string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/%s/releases/download/%s/%s",
		strings.TrimRight(c.downloadBaseURL, "/"), c.owner, c.repo, tag, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	c.log.Debug("release file downloaded", "name", name, "bytes", len(data))
	return data, nil
}

// checksumIndex parses a goreleaser checksums.txt into file→hash. Lines
// that do not hold exactly a hash and a name are skipped.
func checksumIndex(data []byte) map[string]string {
	index := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 {
			continue
		}
		index[fields[1]] = fields[0]
	}
	return index
}

// matchChecksum compares data against an expected sha256 hex digest.
func matchChecksum(data []byte, wantHex string) error {
	sum := sha256.Sum256(data)
	if got := hex.EncodeToString(sum[:]); got != wantHex {
		return fmt.Errorf("%w: want %s, got %s", ErrChecksum, wantHex, got)
	}
	return nil
}

// unpackBinary pulls the executable out of a release archive.
func unpackBinary(archive []byte, asset string) ([]byte, error) {
	if strings.HasSuffix(asset, ".zip") {
		return binaryFromZip(archive, binaryName+".exe")
	}
	return binaryFromTarGz(archive, binaryName)
}

func binaryFromTarGz(archive []byte, name string) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag == tar.TypeReg && filepath.Base(hdr.Name) == name {
			return io.ReadAll(tr)
		}
	}
	return nil, fmt.Errorf("no %q inside the release archive", name)
}

func binaryFromZip(archive []byte, name string) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	for _, f := range r.File {
		if filepath.Base(f.Name) != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer func() { _ = rc.Close() }()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("no %q inside the release archive", name)
}

// swapBinary replaces the file at target with data, keeping the
// original file mode. The new binary is staged in a temp dir beside the
// target, re-read and hash-checked before the rename so a corrupted
// write never lands.
func swapBinary(target string, data []byte) error {
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("stat target: %w", err)
	}

	staging, err := os.MkdirTemp(filepath.Dir(target), "."+binaryName+"-update-*")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	staged := filepath.Join(staging, binaryName+".next")
	if err := os.WriteFile(staged, data, 0o600); err != nil {
		return fmt.Errorf("stage binary: %w", err)
	}

	onDisk, err := os.ReadFile(staged)
	if err != nil {
		return fmt.Errorf("re-read staged binary: %w", err)
	}
	if sha256.Sum256(onDisk) != sha256.Sum256(data) {
		return fmt.Errorf("%w: staged binary differs from the download", ErrChecksum)
	}

	if err := os.Rename(staged, target); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return os.Chmod(target, info.Mode())
}
