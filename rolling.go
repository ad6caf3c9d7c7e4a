package rlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"go.uber.org/zap/zapcore"
)

const (
	defaultFileDate = "yyyy-MM-dd_HH-mm-ss"
	compressedExt   = ".gz"
)

// rollingFile is a zapcore.WriteSyncer writing to a file that is closed and
// archived once it reaches maxSize. At most backups archives are retained.
type rollingFile struct {
	mu sync.Mutex

	dir      string
	base     []token // file name pattern
	matcher  *regexp.Regexp
	latest   string
	maxSize  int64
	backups  int
	compress bool
	now      func() time.Time

	file    *os.File
	size    int64
	count   int
	current atomic.Value // stores string, path of the active file

	wg sync.WaitGroup // background compression and pruning
}

// openRollingFile creates the log directory, opens the active file and refreshes the latest link.
// Unless startup is set, the newest existing file is continued when it still has room.
func openRollingFile(w writerSpec) (*rollingFile, error) {
	dir, name := filepath.Split(w.file)
	if strings.ContainsAny(dir, "{}") {
		return nil, fmt.Errorf("%w: placeholders are only allowed in the file name: %q", ErrInvalidConfig, w.file)
	}
	base, matcher, err := compileFileName(name)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	r := &rollingFile{
		dir:      filepath.Clean(dir),
		base:     base,
		matcher:  matcher,
		latest:   w.latest,
		maxSize:  w.maxSize,
		backups:  w.backups,
		compress: w.compress,
		now:      time.Now,
	}
	if err := r.open(!w.startup); err != nil {
		return nil, err
	}
	return r, nil
}

// compileFileName splits a file name pattern into tokens and builds a regexp that
// matches every name it can produce, including compressed archives.
// The count, when present, is the "count" group.
func compileFileName(pattern string) ([]token, *regexp.Regexp, error) {
	var tokens []token
	var expr strings.Builder
	expr.WriteString("^")

	rest := pattern
	for rest != "" {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			tokens = append(tokens, token{kind: tokenLiteral, arg: rest})
			expr.WriteString(regexp.QuoteMeta(rest))
			break
		}
		if open > 0 {
			tokens = append(tokens, token{kind: tokenLiteral, arg: rest[:open]})
			expr.WriteString(regexp.QuoteMeta(rest[:open]))
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return nil, nil, fmt.Errorf("%w: unterminated placeholder in %q", ErrInvalidPattern, pattern)
		}
		name, arg, hasArg := strings.Cut(rest[open+1:open+end], ":")
		switch strings.TrimSpace(name) {
		case "date":
			if !hasArg {
				arg = defaultFileDate
			}
			tokens = append(tokens, token{kind: tokenDate, arg: javaLayout(arg)})
			expr.WriteString(".+?")
		case "count":
			tokens = append(tokens, token{kind: tokenCount})
			expr.WriteString(`(?P<count>\d+)`)
		case "pid":
			tokens = append(tokens, token{kind: tokenPid})
			expr.WriteString(`\d+`)
		default:
			return nil, nil, fmt.Errorf("%w: unknown file placeholder {%s}", ErrInvalidPattern, name)
		}
		rest = rest[open+end+1:]
	}

	// uniqueness suffix added by nextName and compressed archives
	expr.WriteString(`(?:\.\d+)?(?:` + regexp.QuoteMeta(compressedExt) + `)?$`)
	matcher, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return tokens, matcher, nil
}

// expand renders the file name for the given time and count.
func (r *rollingFile) expand(t time.Time, count int) string {
	var b strings.Builder
	for _, tok := range r.base {
		switch tok.kind {
		case tokenLiteral:
			b.WriteString(tok.arg)
		case tokenDate:
			b.WriteString(t.Format(tok.arg))
		case tokenCount:
			b.WriteString(strconv.Itoa(count))
		case tokenPid:
			b.WriteString(strconv.Itoa(os.Getpid()))
		}
	}
	return b.String()
}

// archive is a file in the log directory produced by this writer.
type archive struct {
	name    string
	count   int
	modTime time.Time
	size    int64
}

// scan lists the files matching the name pattern, oldest first.
func (r *rollingFile) scan() ([]archive, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}

	countIdx := r.matcher.SubexpIndex("count")
	var files []archive
	for _, entry := range entries {
		if entry.IsDir() || filepath.Join(r.dir, entry.Name()) == filepath.Clean(r.latest) {
			continue
		}
		m := r.matcher.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		a := archive{name: entry.Name(), modTime: info.ModTime(), size: info.Size()}
		if countIdx >= 0 {
			a.count, _ = strconv.Atoi(m[countIdx])
		}
		files = append(files, a)
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].count != files[j].count {
			return files[i].count < files[j].count
		}
		return files[i].modTime.Before(files[j].modTime)
	})
	return files, nil
}

// open opens the active file. When resume is set and the newest existing file is
// not compressed and below maxSize, it is appended to instead of starting a new one.
func (r *rollingFile) open(resume bool) error {
	files, err := r.scan()
	if err != nil {
		return fmt.Errorf("failed to scan log directory: %w", err)
	}

	count := 0
	if len(files) > 0 {
		newest := files[len(files)-1]
		count = newest.count + 1
		if resume && !strings.HasSuffix(newest.name, compressedExt) &&
			(r.maxSize == 0 || newest.size < r.maxSize) {
			return r.openFile(filepath.Join(r.dir, newest.name), newest.count)
		}
	}

	path, err := r.nextName(count)
	if err != nil {
		return err
	}
	return r.openFile(path, count)
}

// nextName returns an unused path for count, adding a numeric suffix on collision.
func (r *rollingFile) nextName(count int) (string, error) {
	name := r.expand(r.now(), count)
	path := filepath.Join(r.dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, nil
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; i <= 1000; i++ {
		path = filepath.Join(r.dir, fmt.Sprintf("%s%s.%d", stem, ext, i))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique log filename for %q", name)
}

func (r *rollingFile) openFile(path string, count int) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	r.file = file
	r.size = info.Size()
	r.count = count
	r.current.Store(path)
	r.linkLatest(path)
	return nil
}

// linkLatest points the latest link at path. A symlink is preferred, a hard link
// is the fallback where symlinks are not permitted.
func (r *rollingFile) linkLatest(path string) {
	if r.latest == "" {
		return
	}
	if err := os.Remove(r.latest); err != nil && !os.IsNotExist(err) {
		return
	}
	target := path
	if filepath.Clean(filepath.Dir(r.latest)) == r.dir {
		target = filepath.Base(path)
	}
	if err := os.Symlink(target, r.latest); err != nil {
		_ = os.Link(path, r.latest)
	}
}

func (r *rollingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return 0, ErrShutdown
	}
	if r.maxSize > 0 && r.size > 0 && r.size+int64(len(p)) > r.maxSize {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *rollingFile) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	return r.file.Sync()
}

// Close closes the active file and waits for background archive work.
func (r *rollingFile) Close() error {
	r.mu.Lock()
	var err error
	if r.file != nil {
		err = r.file.Close()
		r.file = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
	return err
}

// rotate opens the next file, then closes and archives the old one. When the
// next file cannot be opened the active file stays in place and the next write
// tries again. Callers must hold r.mu.
func (r *rollingFile) rotate() error {
	prev := r.file
	path, err := r.nextName(r.count + 1)
	if err != nil {
		return err
	}
	if err := r.openFile(path, r.count+1); err != nil {
		return fmt.Errorf("failed to create new log file: %w", err)
	}
	old := prev.Name()
	if err := prev.Close(); err != nil {
		return fmt.Errorf("failed to close old log file: %w", err)
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if r.compress {
			_ = compressFile(old)
		}
		r.prune()
	}()
	return nil
}

// prune removes the oldest archives beyond the backup limit. The active file never counts.
func (r *rollingFile) prune() {
	if r.backups < 0 {
		return
	}
	files, err := r.scan()
	if err != nil {
		return
	}

	active, _ := r.current.Load().(string)
	var archives []archive
	for _, f := range files {
		if filepath.Join(r.dir, f.name) == active {
			continue
		}
		archives = append(archives, f)
	}
	for len(archives) > r.backups {
		_ = os.Remove(filepath.Join(r.dir, archives[0].name))
		archives = archives[1:]
	}
}

// compressFile replaces path with a gzip compressed path.gz.
func compressFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(path+compressedExt, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	zw := gzip.NewWriter(dst)
	if _, err := io.Copy(zw, src); err != nil {
		zw.Close()
		dst.Close()
		os.Remove(dst.Name())
		return err
	}
	if err := zw.Close(); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	src.Close()
	return os.Remove(path)
}

// charsetSyncer transcodes UTF-8 output into another charset before it reaches the file.
type charsetSyncer struct {
	w    io.Writer
	sync zapcore.WriteSyncer
}

func (c *charsetSyncer) Write(p []byte) (int, error) {
	if _, err := c.w.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *charsetSyncer) Sync() error {
	return c.sync.Sync()
}

// withCharset wraps ws so that output is encoded in charset. UTF-8 needs no wrapping.
func withCharset(ws zapcore.WriteSyncer, charset string) (zapcore.WriteSyncer, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCharset, charset)
	}
	if name, _ := htmlindex.Name(enc); name == "utf-8" {
		return ws, nil
	}
	return &charsetSyncer{
		w:    encoding.ReplaceUnsupported(enc.NewEncoder()).Writer(ws),
		sync: ws,
	}, nil
}
