// Package services holds the ledger's state-management logic: validation,
// transaction writing, recurring injection, and the budget alert monitor.
package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"ledger/internal/core"
)

// Field names of a candidate transaction record. Date, kind, and amount are
// required in the programmatic convention.
const (
	FieldDate        = "date"
	FieldKind        = "kind"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldDescription = "description"
)

var requiredFields = []string{FieldDate, FieldKind, FieldAmount}

// ValidateRecord is the programmatic call convention: the whole candidate
// record arrives at once. Missing required keys report ErrMissingField before
// any per-field validation runs. An empty date value defaults to today and
// supplied dates are re-normalized to canonical ISO form.
func ValidateRecord(fields map[string]string, today core.Date) (core.Transaction, error) {
	for _, key := range requiredFields {
		if _, ok := fields[key]; !ok {
			return core.Transaction{}, fmt.Errorf("%w: %s", core.ErrMissingField, key)
		}
	}

	date := today
	if raw := strings.TrimSpace(fields[FieldDate]); raw != "" {
		var err error
		if date, err = core.ParseDate(raw); err != nil {
			return core.Transaction{}, err
		}
	}

	kind, err := core.ParseKind(fields[FieldKind])
	if err != nil {
		return core.Transaction{}, err
	}

	amount, err := core.ParseAmount(fields[FieldAmount])
	if err != nil {
		return core.Transaction{}, err
	}

	return core.Transaction{
		Date:        date,
		Kind:        kind,
		Amount:      amount,
		Category:    core.NormalizeCategory(fields[FieldCategory]),
		Description: fields[FieldDescription],
	}, nil
}

// FieldPrompter solicits one raw field value at a time for the interactive
// call convention.
type FieldPrompter interface {
	Prompt(ctx context.Context, field, label string) (string, error)
}

// CollectInteractive is the interactive call convention: each field is
// solicited and validated before the next prompt, and the first failure
// aborts the whole collection with nothing written.
func CollectInteractive(ctx context.Context, p FieldPrompter, today core.Date) (core.Transaction, error) {
	raw, err := p.Prompt(ctx, FieldDate, "date (YYYY-MM-DD, empty for today)")
	if err != nil {
		return core.Transaction{}, err
	}
	date := today
	if raw = strings.TrimSpace(raw); raw != "" {
		if date, err = core.ParseDate(raw); err != nil {
			return core.Transaction{}, err
		}
	}

	raw, err = p.Prompt(ctx, FieldKind, "kind (income/expense)")
	if err != nil {
		return core.Transaction{}, err
	}
	kind, err := core.ParseKind(raw)
	if err != nil {
		return core.Transaction{}, err
	}

	raw, err = p.Prompt(ctx, FieldAmount, "amount")
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(raw)
	if err != nil {
		return core.Transaction{}, err
	}

	category, err := p.Prompt(ctx, FieldCategory, "category (optional)")
	if err != nil {
		return core.Transaction{}, err
	}

	description, err := p.Prompt(ctx, FieldDescription, "description (optional)")
	if err != nil {
		return core.Transaction{}, err
	}

	return core.Transaction{
		Date:        date,
		Kind:        kind,
		Amount:      amount,
		Category:    core.NormalizeCategory(category),
		Description: description,
	}, nil
}

// IOPrompter reads prompted values line by line from an input stream,
// echoing labels to the output stream.
type IOPrompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewIOPrompter(in io.Reader, out io.Writer) *IOPrompter {
	return &IOPrompter{scanner: bufio.NewScanner(in), out: out}
}

func (p *IOPrompter) Prompt(ctx context.Context, field, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := fmt.Fprintf(p.out, "%s: ", label); err != nil {
		return "", err
	}
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return p.scanner.Text(), nil
}
