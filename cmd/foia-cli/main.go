package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/foia-desk-api/internal/models"
	"github.com/noah-isme/foia-desk-api/internal/registry"
	"github.com/noah-isme/foia-desk-api/internal/repository"
)

// Exit codes: usage problems are distinguished from domain failures so
// scripts can branch on them.
const (
	exitSuccess = 0
	exitFailure = 1
	exitUsage   = 2
)

const defaultSnapshotPath = "foia_requests.json"

const usageText = `Usage: foia-cli <command> [flags] [args]

Commands:
  submit   -requester <name> -description <text>   file a new request
  assign   -officer <name> <tracking>               route a request to an officer
  fulfill  [-doc <ref>]... [-redacted <ref>=<rationale>]... <tracking>
                                                    release documents and close
  deny     -exemptions <codes> -reason <text> <tracking>
                                                    deny citing exemption codes
  appeal   -grounds <text> <tracking>               contest a denial
  note     -author <name> -text <text> <tracking>   append an internal note
  list     [-status <status>]                       list requests oldest first
  overdue  [-as-of <YYYY-MM-DD>]                    list requests past deadline
  stats                                             print agency statistics as JSON
  report   <tracking>                               print the request report

Every command accepts -snapshot <path> naming the registry snapshot file
(default $SNAPSHOT_PATH, falling back to foia_requests.json).
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches one command and maps its outcome to an exit code. The CLI
// rejects malformed invocations itself; everything about request content is
// left to the registry so both binaries enforce identical rules.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usageText)
		return exitUsage
	}
	command, rest := args[0], args[1:]
	if command == "help" || command == "-h" || command == "--help" {
		fmt.Fprint(stdout, usageText)
		return exitSuccess
	}

	err := dispatch(command, rest, stdout)
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintf(stderr, "foia-cli: %v\n", err)
	var usage *usageError
	if errors.As(err, &usage) {
		return exitUsage
	}
	return exitFailure
}

func dispatch(command string, args []string, stdout io.Writer) error {
	switch command {
	case "submit":
		return runSubmit(args, stdout)
	case "assign":
		return runAssign(args, stdout)
	case "fulfill":
		return runFulfill(args, stdout)
	case "deny":
		return runDeny(args, stdout)
	case "appeal":
		return runAppeal(args, stdout)
	case "note":
		return runNote(args, stdout)
	case "list":
		return runList(args, stdout)
	case "overdue":
		return runOverdue(args, stdout)
	case "stats":
		return runStats(args, stdout)
	case "report":
		return runReport(args, stdout)
	default:
		return usagef("unknown command %q", command)
	}
}

// usageError marks invocation mistakes so run can exit 2 instead of 1.
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...interface{}) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// newFlagSet builds a command flag set that returns parse errors instead of
// printing them, and wires the shared -snapshot flag.
func newFlagSet(command string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	snapshot := fs.String("snapshot", snapshotDefault(), "registry snapshot file")
	return fs, snapshot
}

func snapshotDefault() string {
	if path := os.Getenv("SNAPSHOT_PATH"); path != "" {
		return path
	}
	return defaultSnapshotPath
}

// desk is one loaded registry bound to its snapshot file.
type desk struct {
	store *repository.FileSnapshotStore
	reg   *registry.RequestRegistry
}

func openDesk(path string) (*desk, error) {
	store := repository.NewFileSnapshotStore(path)
	snapshot, err := store.Load(context.Background())
	if err != nil {
		return nil, err
	}
	reg := registry.NewRequestRegistry(registry.Config{})
	if err := reg.Restore(snapshot); err != nil {
		return nil, err
	}
	return &desk{store: store, reg: reg}, nil
}

func (d *desk) save() error {
	return d.store.Save(context.Background(), d.reg.Snapshot())
}

// trackingArg extracts the single tracking number positional.
func trackingArg(fs *flag.FlagSet, command string) (string, error) {
	if fs.NArg() != 1 {
		return "", usagef("%s: expected exactly one tracking number argument", command)
	}
	return fs.Arg(0), nil
}

func runSubmit(args []string, stdout io.Writer) error {
	fs, snapshot := newFlagSet("submit")
	requester := fs.String("requester", "", "person or organization filing the request")
	description := fs.String("description", "", "records being sought")
	if err := fs.Parse(args); err != nil {
		return usagef("submit: %v", err)
	}
	if fs.NArg() != 0 {
		return usagef("submit: unexpected argument %q", fs.Arg(0))
	}

	d, err := openDesk(*snapshot)
	if err != nil {
		return err
	}
	req, err := d.reg.Submit(*requester, *description)
	if err != nil {
		return err
	}
	if err := d.save(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Submitted %s, response due %s\n",
		req.TrackingNumber, req.DueAt.Format("2006-01-02"))
	return nil
}

func runAssign(args []string, stdout io.Writer) error {
	fs, snapshot := newFlagSet("assign")
	officer := fs.String("officer", "", "officer taking the request")
	if err := fs.Parse(args); err != nil {
		return usagef("assign: %v", err)
	}
	tracking, err := trackingArg(fs, "assign")
	if err != nil {
		return err
	}

	d, err := openDesk(*snapshot)
	if err != nil {
		return err
	}
	req, err := d.reg.Assign(tracking, *officer)
	if err != nil {
		return err
	}
	if err := d.save(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s assigned to %s\n", req.TrackingNumber, req.AssignedOfficer)
	return nil
}

func runFulfill(args []string, stdout io.Writer) error {
	fs, snapshot := newFlagSet("fulfill")
	var plain, redacted stringList
	fs.Var(&plain, "doc", "document package reference, repeatable")
	fs.Var(&redacted, "redacted", "redacted package as <ref>=<rationale>, repeatable")
	if err := fs.Parse(args); err != nil {
		return usagef("fulfill: %v", err)
	}
	tracking, err := trackingArg(fs, "fulfill")
	if err != nil {
		return err
	}

	documents := make([]models.Document, 0, len(plain)+len(redacted))
	for _, ref := range plain {
		documents = append(documents, models.Document{Ref: ref})
	}
	for _, entry := range redacted {
		ref, rationale, ok := strings.Cut(entry, "=")
		if !ok {
			return usagef("fulfill: -redacted wants <ref>=<rationale>, got %q", entry)
		}
		documents = append(documents, models.Document{
			Ref:                ref,
			Redacted:           true,
			RedactionRationale: rationale,
		})
	}

	d, err := openDesk(*snapshot)
	if err != nil {
		return err
	}
	req, err := d.reg.Fulfill(tracking, documents)
	if err != nil {
		return err
	}
	if err := d.save(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s FULFILLED, released %d document(s)\n",
		req.TrackingNumber, len(req.Documents))
	return nil
}

func runDeny(args []string, stdout io.Writer) error {
	fs, snapshot := newFlagSet("deny")
	exemptions := fs.String("exemptions", "", "comma-separated exemption codes")
	reason := fs.String("reason", "", "written denial reason")
	if err := fs.Parse(args); err != nil {
		return usagef("deny: %v", err)
	}
	tracking, err := trackingArg(fs, "deny")
	if err != nil {
		return err
	}
	codes, err := parseExemptionList(*exemptions)
	if err != nil {
		return err
	}

	d, err := openDesk(*snapshot)
	if err != nil {
		return err
	}
	req, err := d.reg.Deny(tracking, codes, *reason)
	if err != nil {
		return err
	}
	if err := d.save(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s DENIED citing exemptions %s\n",
		req.TrackingNumber, formatExemptions(req.ExemptionsCited))
	return nil
}

func runAppeal(args []string, stdout io.Writer) error {
	fs, snapshot := newFlagSet("appeal")
	grounds := fs.String("grounds", "", "grounds for contesting the denial")
	if err := fs.Parse(args); err != nil {
		return usagef("appeal: %v", err)
	}
	tracking, err := trackingArg(fs, "appeal")
	if err != nil {
		return err
	}

	d, err := openDesk(*snapshot)
	if err != nil {
		return err
	}
	req, err := d.reg.Appeal(tracking, *grounds)
	if err != nil {
		return err
	}
	if err := d.save(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s APPEALED\n", req.TrackingNumber)
	return nil
}

func runNote(args []string, stdout io.Writer) error {
	fs, snapshot := newFlagSet("note")
	author := fs.String("author", "", "who is writing the note")
	text := fs.String("text", "", "note text")
	if err := fs.Parse(args); err != nil {
		return usagef("note: %v", err)
	}
	tracking, err := trackingArg(fs, "note")
	if err != nil {
		return err
	}

	d, err := openDesk(*snapshot)
	if err != nil {
		return err
	}
	req, err := d.reg.AddNote(tracking, *author, *text)
	if err != nil {
		return err
	}
	if err := d.save(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Note added to %s\n", req.TrackingNumber)
	return nil
}

func runList(args []string, stdout io.Writer) error {
	fs, snapshot := newFlagSet("list")
	status := fs.String("status", "", "only show requests in this status")
	if err := fs.Parse(args); err != nil {
		return usagef("list: %v", err)
	}
	if fs.NArg() != 0 {
		return usagef("list: unexpected argument %q", fs.Arg(0))
	}

	var filter models.RequestFilter
	if *status != "" {
		normalized := models.RequestStatus(strings.ToUpper(*status))
		if !models.ValidRequestStatus(string(normalized)) {
			return usagef("list: unknown status %q", *status)
		}
		filter.Status = &normalized
	}

	d, err := openDesk(*snapshot)
	if err != nil {
		return err
	}
	for _, req := range d.reg.List(filter) {
		fmt.Fprintf(stdout, "[%s] %s  %s  %s\n",
			req.Status, req.TrackingNumber, req.Requester, truncate(req.Description, 50))
	}
	return nil
}

func runOverdue(args []string, stdout io.Writer) error {
	fs, snapshot := newFlagSet("overdue")
	asOfRaw := fs.String("as-of", "", "evaluate deadlines at this date, YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return usagef("overdue: %v", err)
	}
	if fs.NArg() != 0 {
		return usagef("overdue: unexpected argument %q", fs.Arg(0))
	}

	asOf := time.Now().UTC()
	if *asOfRaw != "" {
		parsed, err := time.Parse("2006-01-02", *asOfRaw)
		if err != nil {
			return usagef("overdue: invalid -as-of format, expected YYYY-MM-DD")
		}
		asOf = parsed.UTC()
	}

	d, err := openDesk(*snapshot)
	if err != nil {
		return err
	}
	overdue := d.reg.Overdue(asOf)
	if len(overdue) == 0 {
		fmt.Fprintln(stdout, "No overdue requests.")
		return nil
	}
	for _, req := range overdue {
		fmt.Fprintf(stdout, "OVERDUE %dd: %s  %s\n",
			req.DaysPastDue(asOf), req.TrackingNumber, req.Requester)
	}
	return nil
}

func runStats(args []string, stdout io.Writer) error {
	fs, snapshot := newFlagSet("stats")
	if err := fs.Parse(args); err != nil {
		return usagef("stats: %v", err)
	}
	if fs.NArg() != 0 {
		return usagef("stats: unexpected argument %q", fs.Arg(0))
	}

	d, err := openDesk(*snapshot)
	if err != nil {
		return err
	}
	stats := registry.NewReportEngine().AgencyStatistics(
		d.reg.List(models.RequestFilter{}), time.Now().UTC())

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}

func runReport(args []string, stdout io.Writer) error {
	fs, snapshot := newFlagSet("report")
	if err := fs.Parse(args); err != nil {
		return usagef("report: %v", err)
	}
	tracking, err := trackingArg(fs, "report")
	if err != nil {
		return err
	}

	d, err := openDesk(*snapshot)
	if err != nil {
		return err
	}
	req, err := d.reg.Get(tracking)
	if err != nil {
		return err
	}
	report := registry.NewReportEngine().DetailReport(req, time.Now().UTC())
	renderDetailReport(stdout, report)
	return nil
}

// renderDetailReport prints the banner-style desk report.
func renderDetailReport(w io.Writer, report *models.RequestDetailReport) {
	req := report.Request
	rule := strings.Repeat("=", 65)
	sep := strings.Repeat("-", 40)

	overdueSuffix := ""
	if report.Overdue {
		overdueSuffix = fmt.Sprintf(" (OVERDUE by %d days)", -report.DaysUntilDue)
	}
	assigned := req.AssignedOfficer
	if assigned == "" {
		assigned = "Unassigned"
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "FOIA REQUEST REPORT")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Tracking #    : %s\n", req.TrackingNumber)
	fmt.Fprintf(w, "Requester     : %s\n", req.Requester)
	fmt.Fprintf(w, "Status        : %s\n", req.Status)
	fmt.Fprintf(w, "Submitted     : %s\n", req.SubmittedAt.Format("2006-01-02"))
	fmt.Fprintf(w, "Due Date      : %s%s\n", req.DueAt.Format("2006-01-02"), overdueSuffix)
	fmt.Fprintf(w, "Assigned To   : %s\n", assigned)
	fmt.Fprintf(w, "Timeline      : %s\n", report.Timeline)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "DESCRIPTION")
	fmt.Fprintln(w, sep)
	fmt.Fprintln(w, req.Description)

	if len(req.Documents) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "RELEASED DOCUMENTS")
		fmt.Fprintln(w, sep)
		for _, doc := range req.Documents {
			marker := ""
			if doc.Redacted {
				marker = fmt.Sprintf(" [redacted: %s]", doc.RedactionRationale)
			}
			fmt.Fprintf(w, "  %s%s\n", doc.Ref, marker)
		}
	}

	if req.DenialReason != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "DENIAL")
		fmt.Fprintln(w, sep)
		fmt.Fprintf(w, "  Reason    : %s\n", req.DenialReason)
		fmt.Fprintf(w, "  Exemptions: %s\n", formatExemptions(req.ExemptionsCited))
	}

	if req.AppealGrounds != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "APPEAL")
		fmt.Fprintln(w, sep)
		fmt.Fprintf(w, "  Grounds   : %s\n", truncate(req.AppealGrounds, 80))
	}

	if len(req.Notes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "INTERNAL NOTES (%d)\n", len(req.Notes))
		fmt.Fprintln(w, sep)
		for _, note := range tailNotes(req.Notes, 3) {
			fmt.Fprintf(w, "  %s [%s]: %s\n",
				note.CreatedAt.Format("2006-01-02"), note.Author, truncate(note.Text, 100))
		}
	}
	fmt.Fprintln(w, rule)
}

// parseExemptionList splits a comma-separated code list. Range checks stay
// with the registry; only integer syntax is a usage problem.
func parseExemptionList(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	codes := make([]int, 0, len(parts))
	for _, part := range parts {
		code, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, usagef("deny: exemption codes must be integers, got %q", part)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func formatExemptions(codes models.ExemptionCodes) string {
	if len(codes) == 0 {
		return "none"
	}
	parts := make([]string, len(codes))
	for i, code := range codes {
		parts[i] = strconv.Itoa(code)
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// tailNotes keeps the newest n entries, mirroring the desk report's focus on
// recent activity.
func tailNotes(notes models.NoteList, n int) models.NoteList {
	if len(notes) <= n {
		return notes
	}
	return notes[len(notes)-n:]
}
