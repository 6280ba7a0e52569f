package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"citycore/internal/core"
	"citycore/pkg/domain"
)

var errInvalidDocument = errors.New("invalid buildings document")

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a buildings JSON document without touching storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			return validateDocument(cmd.OutOrStdout(), data)
		},
	}
}

func validateDocument(out io.Writer, data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if domain.IsValidBuildings(raw) {
		buildings, err := domain.ToBuildings(raw)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "valid: %d building(s)\n", len(buildings))
		return nil
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		fmt.Fprintln(out, "invalid: document must be an object keyed by address")
		return errInvalidDocument
	}
	addrs := make([]string, 0, len(obj))
	for addr, b := range obj {
		if !domain.IsValidBuilding(b) {
			addrs = append(addrs, addr)
		}
	}
	sort.Strings(addrs)
	for _, addr := range addrs {
		fmt.Fprintf(out, "invalid: building %s\n", addr)
	}
	return errInvalidDocument
}

func newSnapshotCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print the snapshot held by the configured storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			p, err := core.OpenPersister(cmd.Context(), cfg.Storage)
			if err != nil {
				return fmt.Errorf("open persister: %w", err)
			}
			if closer, ok := p.(io.Closer); ok {
				defer func() { _ = closer.Close() }()
			}
			snapshot, found, err := p.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load snapshot: %w", err)
			}
			if !found {
				snapshot = domain.Buildings{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snapshot)
		},
	}
}
