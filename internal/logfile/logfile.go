package logfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// TimestampLayout is the time portion of a log file name.
// Millisecond precision keeps rapid successive runs apart; the exclusive
// create in Create handles whatever still collides.
const TimestampLayout = "20060102_150405.000"

// maxCollisions bounds the suffix search in Create.
const maxCollisions = 1000

// nameRe matches <prefix>_<YYYYMMDD>_<HHMMSS.mmm>[_<seq>] (extension removed).
var nameRe = regexp.MustCompile(`^(.+)_(\d{8}_\d{6}\.\d{3})(?:_(\d+))?$`)

// Info holds metadata about a log file on disk.
type Info struct {
	Name      string
	Path      string // full path (dir joined with Name)
	Prefix    string
	Timestamp time.Time
	Seq       int // collision suffix, 0 when absent
}

// Name builds a log file name: run_20240115_143022.123.log
func Name(prefix, ext string, t time.Time) string {
	return nameWithSeq(prefix, ext, t, 0)
}

func nameWithSeq(prefix, ext string, t time.Time, seq int) string {
	base := fmt.Sprintf("%s_%s", prefix, t.Format(TimestampLayout))
	if seq > 0 {
		base += "_" + strconv.Itoa(seq)
	}
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// Parse reverses Name. The extension, if any, is stripped before matching.
// Timestamps are interpreted in the local zone, like the clock that made them.
func Parse(name string) (Info, error) {
	base := name
	if ext := filepath.Ext(name); ext != "" && !strings.ContainsAny(ext[1:], "0123456789_") {
		base = strings.TrimSuffix(name, ext)
	}

	m := nameRe.FindStringSubmatch(base)
	if m == nil {
		return Info{}, fmt.Errorf("log name %q does not match <prefix>_%s", name, TimestampLayout)
	}

	ts, err := time.ParseInLocation(TimestampLayout, m[2], time.Local)
	if err != nil {
		return Info{}, fmt.Errorf("parsing timestamp of %q: %w", name, err)
	}

	info := Info{Name: name, Prefix: m[1], Timestamp: ts}
	if m[3] != "" {
		info.Seq, err = strconv.Atoi(m[3])
		if err != nil {
			return Info{}, fmt.Errorf("parsing sequence of %q: %w", name, err)
		}
	}
	return info, nil
}

// Create opens a fresh log file in dir for appending. The name is derived
// from t; if it already exists a _1, _2, ... suffix is tried instead, so two
// runs never share a file. Returns the open file and its full path.
func Create(fsys afero.Fs, dir, prefix, ext string, t time.Time) (afero.File, string, error) {
	for seq := 0; seq < maxCollisions; seq++ {
		path := filepath.Join(dir, nameWithSeq(prefix, ext, t, seq))
		f, err := fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL|os.O_APPEND, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("creating log file %s: %w", path, err)
		}
		return f, path, nil
	}
	return nil, "", fmt.Errorf("creating log file in %s: %d names already taken for %s",
		dir, maxCollisions, t.Format(TimestampLayout))
}

// Discover lists the log files in dir, newest first. If prefix is non-empty
// only files with that prefix are returned. Entries that do not parse as log
// names are skipped. A missing directory yields nil, nil.
func Discover(fsys afero.Fs, dir, prefix string) ([]Info, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading log directory: %w", err)
	}

	var logs []Info
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := Parse(e.Name())
		if err != nil {
			continue
		}
		if prefix != "" && info.Prefix != prefix {
			continue
		}
		info.Path = filepath.Join(dir, e.Name())
		logs = append(logs, info)
	}

	sort.Slice(logs, func(i, j int) bool {
		if logs[i].Timestamp.Equal(logs[j].Timestamp) {
			return logs[i].Seq > logs[j].Seq
		}
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})

	return logs, nil
}

// ErrNoLogs is returned by Latest when dir holds no matching log files.
var ErrNoLogs = errors.New("no log files")

// Latest returns the newest log file in dir.
func Latest(fsys afero.Fs, dir, prefix string) (Info, error) {
	logs, err := Discover(fsys, dir, prefix)
	if err != nil {
		return Info{}, err
	}
	if len(logs) == 0 {
		return Info{}, fmt.Errorf("%w in %s", ErrNoLogs, dir)
	}
	return logs[0], nil
}
