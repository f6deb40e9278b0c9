package graph

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Roam reads the org-roam SQLite database and creates or opens note files in
// the roam directory.
//
// org-roam stores most column values as printed Lisp objects, so strings
// arrive double-quoted; queries match both the quoted and bare form and
// results are unquoted before use.
type Roam struct {
	db               *sql.DB
	dir              string
	filenameTemplate string
	opener           string
	now              func() time.Time
}

// RoamOptions configure a Roam graph.
type RoamOptions struct {
	// Database is the path to org-roam.db.
	Database string
	// Directory is where created notes are written.
	Directory string
	// FilenameTemplate names created files; {timestamp} and {slug}
	// placeholders are expanded.
	FilenameTemplate string
	// Opener is the command run to focus a note; {file} and {pos}
	// placeholders are expanded.
	Opener string
}

const (
	defaultFilenameTemplate = "{timestamp}-{slug}.org"
	defaultOpener           = "emacsclient -n {file}"
	timestampLayout         = "20060102150405"
)

// OpenRoam opens the database read-only and returns a graph over it.
func OpenRoam(opts RoamOptions) (*Roam, error) {
	if opts.FilenameTemplate == "" {
		opts.FilenameTemplate = defaultFilenameTemplate
	}
	if opts.Opener == "" {
		opts.Opener = defaultOpener
	}
	db, err := sql.Open("sqlite", opts.Database)
	if err != nil {
		return nil, fmt.Errorf("graph: open %s: %w", opts.Database, err)
	}
	return &Roam{
		db:               db,
		dir:              opts.Directory,
		filenameTemplate: opts.FilenameTemplate,
		opener:           opts.Opener,
		now:              time.Now,
	}, nil
}

// Close releases the database handle.
func (r *Roam) Close() error {
	return r.db.Close()
}

// FindNodeByRef implements Graph.
func (r *Roam) FindNodeByRef(ref string) (*Node, error) {
	row := r.db.QueryRow(
		`SELECT nodes.id, nodes.file, nodes.pos, nodes.title
		 FROM refs JOIN nodes ON nodes.id = refs.node_id
		 WHERE refs.ref IN (?, ?)`,
		ref, lispQuote(ref))

	var n Node
	var pos sql.NullInt64
	if err := row.Scan(&n.ID, &n.File, &pos, &n.Title); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("graph: lookup ref %q: %w", ref, err)
	}
	n.ID = lispUnquote(n.ID)
	n.File = lispUnquote(n.File)
	n.Title = lispUnquote(n.Title)
	n.Pos = int(pos.Int64)
	return &n, nil
}

// FindRefOwner implements Graph.
func (r *Roam) FindRefOwner(ref string) (string, error) {
	row := r.db.QueryRow(
		`SELECT node_id FROM refs WHERE refs.ref IN (?, ?)`,
		ref, lispQuote(ref))

	var id string
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("graph: ref owner %q: %w", ref, err)
	}
	return lispUnquote(id), nil
}

// CreateNode implements Graph. The note file is written into the roam
// directory and then opened, matching what a capture in the editor would do.
// org-roam itself picks the file up on its next database sync.
func (r *Roam) CreateNode(template, title string) error {
	name := r.filenameTemplate
	name = strings.ReplaceAll(name, "{timestamp}", r.now().Format(timestampLayout))
	name = strings.ReplaceAll(name, "{slug}", Slug(title))
	path := filepath.Join(r.dir, name)

	if err := os.WriteFile(path, []byte(template), 0o644); err != nil {
		return fmt.Errorf("graph: write note %s: %w", path, err)
	}
	slog.Info("note created", "file", path)
	return r.openFile(path, 0)
}

// OpenNode implements Graph.
func (r *Roam) OpenNode(n *Node) error {
	return r.openFile(n.File, n.Pos)
}

func (r *Roam) openFile(file string, pos int) error {
	cmdline := r.opener
	cmdline = strings.ReplaceAll(cmdline, "{file}", file)
	cmdline = strings.ReplaceAll(cmdline, "{pos}", strconv.Itoa(pos))

	args := strings.Fields(cmdline)
	if len(args) == 0 {
		return fmt.Errorf("graph: empty opener command")
	}
	cmd := exec.Command(args[0], args[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("graph: opener %q: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Slug derives a filename-safe token from a note title, the way org-roam
// slugs capture filenames: lowercase, runs of non-alphanumerics folded to a
// single underscore.
func Slug(title string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	if b.Len() == 0 {
		return "note"
	}
	return b.String()
}

func lispQuote(s string) string {
	return `"` + s + `"`
}

func lispUnquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
