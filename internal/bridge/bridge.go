// Package bridge wires the Zotero connection, the command dispatcher and the
// org-roam graph into the two user-facing operations: run a citation pick,
// and jump from a note back to its item in Zotero.
package bridge

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"zotroam/pkg/citation"
	"zotroam/pkg/config"
	"zotroam/pkg/graph"
	"zotroam/pkg/rpc"
)

// initiation is the payload of the one call this side originates. Everything
// after it is Zotero calling us.
type initiation struct {
	Command         string `json:"command"`
	TemplateVersion int    `json:"templateVersion"`
}

// Bridge owns the singleton connection and document state for one process.
type Bridge struct {
	cfg        *config.Config
	conn       *rpc.Conn
	dispatcher *rpc.Dispatcher
	openURI    func(uri string) error
}

// New assembles a bridge from its collaborators. The connection is not
// opened until the first operation needs it.
func New(cfg *config.Config, g graph.Graph, alerter rpc.Alerter) *Bridge {
	resolver := citation.NewResolver(g,
		citation.LinkFormat(cfg.Zotero.LinkFormat), cfg.Zotero.Username)

	b := &Bridge{
		cfg:        cfg,
		dispatcher: rpc.NewDispatcher(rpc.NewDocument(), resolver, alerter),
	}
	b.conn = rpc.NewConn(cfg.Zotero.Addr, b.handleFrame)
	b.openURI = b.execURIOpener
	return b
}

// Conn exposes the underlying connection for transport injection.
func (b *Bridge) Conn() *rpc.Conn { return b.conn }

// handleFrame answers one reassembled frame. Replies go straight back out on
// the same connection; the exchange ends when the dispatcher says so.
func (b *Bridge) handleFrame(transactionID uint32, payload string) (bool, error) {
	reply, done, err := b.dispatcher.HandleFrame(transactionID, payload)
	if err != nil {
		return false, err
	}
	if err := b.conn.Send(reply); err != nil {
		return false, err
	}
	return done, nil
}

// Cite sends the citation-dialog initiation to Zotero and services the
// ensuing document API exchange until Zotero reports completion. Blocks for
// the whole exchange, including any citation-picker interaction on the
// Zotero side.
func (b *Bridge) Cite() error {
	frame, err := rpc.EncodeInitiation(initiation{
		Command:         "addEditCitation",
		TemplateVersion: b.cfg.Zotero.TemplateVersion,
	})
	if err != nil {
		return err
	}
	if err := b.conn.Send(frame); err != nil {
		return err
	}
	slog.Debug("citation exchange started", "addr", b.cfg.Zotero.Addr)
	return b.conn.Drive()
}

// OpenRef reads the ROAM_REFS property of the note at path and opens the
// first ref that converts back to a Zotero URI in the reference manager.
func (b *Bridge) OpenRef(path string) error {
	refs, err := readRoamRefs(path)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		uri, ok := refToURI(ref)
		if !ok {
			continue
		}
		slog.Info("opening reference", "uri", uri)
		return b.openURI(uri)
	}
	return fmt.Errorf("bridge: no zotero ref in %s", path)
}

// readRoamRefs scans an org file for its ROAM_REFS property. The property is
// space-separated and may hold several refs.
func readRoamRefs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bridge: read note: %w", err)
	}
	defer f.Close()

	const key = ":ROAM_REFS:"
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(strings.ToUpper(line), key) {
			continue
		}
		return strings.Fields(line[len(key):]), nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bridge: read note: %w", err)
	}
	return nil, nil
}

// refToURI turns a stored ref back into an openable URI. Stored refs are
// schemeless: web refs get https restored, app-link refs (the select/...
// shape) get their zotero scheme back.
func refToURI(ref string) (string, bool) {
	switch {
	case strings.HasPrefix(ref, "zotero://"):
		return ref, true
	case strings.HasPrefix(ref, "select/") && strings.Contains(ref, "/items/"):
		return "zotero://" + ref, true
	case strings.Contains(ref, "zotero.org/"):
		if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
			return ref, true
		}
		return "https://" + ref, true
	default:
		return "", false
	}
}

func (b *Bridge) execURIOpener(uri string) error {
	cmdline := strings.ReplaceAll(b.cfg.Roam.URIOpener, "{uri}", uri)
	args := strings.Fields(cmdline)
	if len(args) == 0 {
		return fmt.Errorf("bridge: empty uri opener command")
	}
	cmd := exec.Command(args[0], args[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("bridge: uri opener %q: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
