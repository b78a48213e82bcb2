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
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	ErrDevBuild      = errors.New("cannot update a development build")
	ErrAlreadyLatest = errors.New("already running the latest version")
	ErrChecksum      = errors.New("checksum verification failed")
)

const (
	binaryName    = "medienreflexion"
	checksumsFile = "checksums.txt"

	// maxDownloadSize bounds release archives and checksum files.
	maxDownloadSize = 64 << 20
)

// Stage names one step of an update run.
type Stage string

const (
	StageCheck    Stage = "check"
	StageDownload Stage = "download"
	StageVerify   Stage = "verify"
	StageExtract  Stage = "extract"
	StageInstall  Stage = "install"
	StageDone     Stage = "done"
)

// Progress is reported once per stage, in order.
type Progress struct {
	Stage   Stage
	Message string
}

// UpdateInput selects the version to install. An empty TargetVersion means
// the latest release.
type UpdateInput struct {
	CurrentVersion string
	TargetVersion  string
}

// platform is the release build matching one GOOS/GOARCH pair.
type platform struct {
	goos, goarch string
}

func hostPlatform() platform {
	return platform{goos: runtime.GOOS, goarch: runtime.GOARCH}
}

// asset returns the archive name goreleaser publishes for p. macOS ships a
// single universal archive.
func (p platform) asset() (string, error) {
	arch := map[string]string{"amd64": "x86_64", "arm64": "arm64", "386": "i386"}[p.goarch]
	switch p.goos {
	case "darwin":
		return binaryName + "_Darwin_all.tar.gz", nil
	case "linux", "windows":
		if arch == "" {
			return "", fmt.Errorf("unsupported architecture: %s", p.goarch)
		}
		ext := ".tar.gz"
		if p.goos == "windows" {
			ext = ".zip"
		}
		return fmt.Sprintf("%s_%s_%s%s", binaryName, strings.ToUpper(p.goos[:1])+p.goos[1:], arch, ext), nil
	default:
		return "", fmt.Errorf("unsupported operating system: %s", p.goos)
	}
}

// executable is the file name of the program inside the archive.
func (p platform) executable() string {
	if p.goos == "windows" {
		return binaryName + ".exe"
	}
	return binaryName
}

// Update installs TargetVersion, or the latest release when none is given,
// over the running executable. report is called at the start of each stage.
func (c *Checker) Update(ctx context.Context, in *UpdateInput, report func(Progress)) error {
	if in.CurrentVersion == "(devel)" {
		return ErrDevBuild
	}

	tag, err := c.resolveTag(ctx, in, report)
	if err != nil {
		return err
	}

	plat := hostPlatform()
	asset, err := plat.asset()
	if err != nil {
		return err
	}
	log := slog.With("from", in.CurrentVersion, "to", tag, "asset", asset)
	log.Info("self update")

	report(Progress{StageDownload, fmt.Sprintf("Lade %s herunter …", tag)})
	archive, err := c.fetch(ctx, c.releaseFileURL(tag, asset))
	if err != nil {
		return fmt.Errorf("download archive: %w", err)
	}

	report(Progress{StageVerify, "Prüfe Prüfsumme …"})
	sums, err := c.fetch(ctx, c.releaseFileURL(tag, checksumsFile))
	if err != nil {
		return fmt.Errorf("download checksums: %w", err)
	}
	want, err := checksumFor(sums, asset)
	if err != nil {
		return err
	}
	if err := verifyChecksum(archive, want); err != nil {
		return err
	}

	report(Progress{StageExtract, "Entpacke Programm …"})
	bin, err := unpack(archive, asset, plat.executable())
	if err != nil {
		return fmt.Errorf("extract binary: %w", err)
	}

	report(Progress{StageInstall, "Ersetze Programmdatei …"})
	target, err := c.execPath()
	if err != nil {
		return fmt.Errorf("resolve executable path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(target); err == nil {
		target = resolved
	}
	if err := install(bin, target); err != nil {
		return fmt.Errorf("install: %w", err)
	}

	log.Info("self update installed", "path", target)
	report(Progress{StageDone, fmt.Sprintf("Aktualisiert auf %s.", tag)})
	return nil
}

// resolveTag returns the release tag to install. An explicit target must be
// a semantic version; "1.2.0" is accepted for "v1.2.0".
func (c *Checker) resolveTag(ctx context.Context, in *UpdateInput, report func(Progress)) (string, error) {
	if in.TargetVersion != "" {
		if canonical(in.TargetVersion) == "" {
			return "", fmt.Errorf("invalid release tag %q", in.TargetVersion)
		}
		if !strings.HasPrefix(in.TargetVersion, "v") {
			return "v" + in.TargetVersion, nil
		}
		return in.TargetVersion, nil
	}

	report(Progress{StageCheck, "Suche nach neuer Version …"})
	res, err := c.Check(ctx, &CheckInput{Version: in.CurrentVersion})
	if err != nil {
		return "", fmt.Errorf("check for updates: %w", err)
	}
	if !res.UpdateAvailable {
		return "", ErrAlreadyLatest
	}
	return res.LatestVersion, nil
}

func (c *Checker) releaseFileURL(tag, file string) string {
	return strings.TrimRight(c.downloadBaseURL, "/") + "/" +
		path.Join(c.owner, c.repo, "releases", "download", tag, file)
}

func (c *Checker) fetch(ctx context.Context, url string) ([]byte, error) {
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
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDownloadSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", url, maxDownloadSize)
	}
	return data, nil
}

// checksumFor finds the hex digest listed for asset in a sha256sum style
// file. A leading '*' on the file name (binary mode) is ignored.
func checksumFor(sums []byte, asset string) (string, error) {
	sc := bufio.NewScanner(bytes.NewReader(sums))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 {
			continue
		}
		if strings.TrimPrefix(fields[1], "*") == asset {
			return strings.ToLower(fields[0]), nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("read %s: %w", checksumsFile, err)
	}
	return "", fmt.Errorf("no checksum for %s in %s", asset, checksumsFile)
}

func verifyChecksum(data []byte, wantHex string) error {
	sum := sha256.Sum256(data)
	if got := hex.EncodeToString(sum[:]); got != wantHex {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksum, wantHex, got)
	}
	return nil
}

// unpack returns the regular file called exe from a .zip or .tar.gz
// archive, wherever it sits in the archive tree.
func unpack(archive []byte, asset, exe string) ([]byte, error) {
	if strings.HasSuffix(asset, ".zip") {
		zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
		if err != nil {
			return nil, fmt.Errorf("open zip: %w", err)
		}
		for _, f := range zr.File {
			if path.Base(f.Name) != exe || !f.Mode().IsRegular() {
				continue
			}
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer func() { _ = rc.Close() }()
			return io.ReadAll(io.LimitReader(rc, maxDownloadSize))
		}
		return nil, fmt.Errorf("binary %q not found in archive", exe)
	}

	gz, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("binary %q not found in archive", exe)
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag == tar.TypeReg && path.Base(hdr.Name) == exe {
			return io.ReadAll(io.LimitReader(tr, maxDownloadSize))
		}
	}
}

// install writes bin next to target, checks what landed on disk and renames
// it over target, keeping target's permission bits. The rename is atomic on
// the same file system, so an interrupted update leaves the old binary.
func install(bin []byte, target string) error {
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("stat target: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+binaryName+"-update-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), bytes.NewReader(bin)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	written, err := os.ReadFile(tmpPath)
	if err != nil {
		return fmt.Errorf("re-read temp file: %w", err)
	}
	onDisk := sha256.Sum256(written)
	if !bytes.Equal(onDisk[:], h.Sum(nil)) {
		return fmt.Errorf("%w: temp file changed after write", ErrChecksum)
	}

	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
