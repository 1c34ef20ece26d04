package hirectl

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/hireledger/internal/digest"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *app) print(cmd *cobra.Command, v any) error {
	w := cmd.OutOrStdout()
	if a.opts.output == "yaml" {
		// round-trip through JSON so yaml keys follow the wire names
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseAdvertID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid advert id %q", s)
	}
	return id, nil
}

func parseTokenID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid token id %q", s)
	}
	return id, nil
}

func parseScore(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid score %q", s)
	}
	return uint16(v), nil
}

func parseCommitment(s string) (digest.Hash, error) {
	h, err := digest.Parse(s)
	if err != nil {
		return h, fmt.Errorf("commitment %q: %w", s, err)
	}
	return h, nil
}
