// Package security provides the approval system for file writes.
// Overwriting an existing file requires user confirmation; overwriting an
// existing rule file requires typing a confirmation word.
package security

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/enunezf/dbsanitize/internal/ui"
)

// ApprovalLevel defines the risk level of an operation
type ApprovalLevel int

const (
	// ReadOnly operations don't require confirmation
	ReadOnly ApprovalLevel = iota
	// Modification operations require simple y/n confirmation
	Modification
	// Destructive operations require confirmation + typing a word
	Destructive
)

// String returns the string representation of the approval level
func (a ApprovalLevel) String() string {
	switch a {
	case ReadOnly:
		return "ReadOnly"
	case Modification:
		return "Modification"
	case Destructive:
		return "Destructive"
	default:
		return "Unknown"
	}
}

// ApprovalRequest represents a request for user approval
type ApprovalRequest struct {
	Operation     string        // Description of the operation
	Target        string        // File that would be written
	Preview       string        // Content that would be written
	Level         ApprovalLevel // Risk level
	ImpactSummary string        // Summary of the impact
}

// Approver defines the interface for approval handling
type Approver interface {
	RequestApproval(req ApprovalRequest) (bool, error)
}

// ConfirmWord must be typed to approve a destructive operation
const ConfirmWord = "CONFIRM"

// InteractiveApprover implements approval via terminal interaction
type InteractiveApprover struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewInteractiveApprover creates a new interactive approver
func NewInteractiveApprover(in io.Reader, out io.Writer) *InteractiveApprover {
	return &InteractiveApprover{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// RequestApproval prompts the user for confirmation based on the operation level
func (a *InteractiveApprover) RequestApproval(req ApprovalRequest) (bool, error) {
	switch req.Level {
	case ReadOnly:
		return true, nil

	case Modification:
		return a.requestSimpleConfirmation(req)

	case Destructive:
		return a.requestStrictConfirmation(req)

	default:
		return false, fmt.Errorf("unknown approval level: %d", req.Level)
	}
}

// requestSimpleConfirmation asks for y/n confirmation
func (a *InteractiveApprover) requestSimpleConfirmation(req ApprovalRequest) (bool, error) {
	displayOperationDetails(a.out, req, false)

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, ui.Warning("This operation will overwrite %s.", req.Target))
	fmt.Fprint(a.out, "Do you want to proceed? [y/N]: ")

	response, err := a.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// requestStrictConfirmation asks for confirmation + typing a specific word
func (a *InteractiveApprover) requestStrictConfirmation(req ApprovalRequest) (bool, error) {
	displayOperationDetails(a.out, req, false)

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, ui.Error("⛔ WARNING: %s already contains sanitize rules!", req.Target))
	fmt.Fprintln(a.out, ui.Error("They will be replaced and cannot be recovered."))
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "Type '%s' to proceed: ", ConfirmWord)

	response, err := a.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	if strings.TrimSpace(response) != ConfirmWord {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, ui.Error("Operation cancelled. Confirmation word did not match."))
		return false, nil
	}

	return true, nil
}

// displayOperationDetails shows the operation information to the user
func displayOperationDetails(out io.Writer, req ApprovalRequest, withPreview bool) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.Rule(60))
	fmt.Fprintln(out, ui.Label("Operation", req.Operation))
	fmt.Fprintln(out, ui.Label("Target", req.Target))
	fmt.Fprintln(out, ui.Label("Risk Level", req.Level.String()))

	if req.ImpactSummary != "" {
		fmt.Fprintln(out, ui.Label("Impact", req.ImpactSummary))
	}

	if withPreview && req.Preview != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, ui.Label("Content", ""))
		fmt.Fprintln(out, ui.Code(strings.TrimRight(req.Preview, "\n")))
	}

	fmt.Fprintln(out, ui.Rule(60))
}

// AutoApprover always returns the same decision (for --yes or automation)
type AutoApprover struct {
	approve bool
}

// NewAutoApprover creates an auto-approver with the specified behavior
func NewAutoApprover(approve bool) *AutoApprover {
	return &AutoApprover{approve: approve}
}

// RequestApproval returns the configured approval decision
func (a *AutoApprover) RequestApproval(req ApprovalRequest) (bool, error) {
	return a.approve, nil
}

// DryRunApprover displays what would happen but never approves
type DryRunApprover struct {
	out io.Writer
}

// NewDryRunApprover creates a new dry-run approver
func NewDryRunApprover(out io.Writer) *DryRunApprover {
	return &DryRunApprover{out: out}
}

// RequestApproval displays the operation but always returns false
func (a *DryRunApprover) RequestApproval(req ApprovalRequest) (bool, error) {
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, ui.Info("[DRY-RUN MODE]")+" The following file would be written:")
	displayOperationDetails(a.out, req, true)
	fmt.Fprintln(a.out, ui.Info("No changes were made (dry-run mode)."))

	return false, nil
}
