package request

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"github.com/regland/regland/pkg/genome"
)

// MaxBodyBytes bounds a POST body.
const MaxBodyBytes = 1 << 20

const classList = `{"type": "array", "items": {"type": "string", "maxLength": 64}, "maxItems": 16}`

var (
	CombinedSchema = mustSchema("combined.json", `{
		"type": "object",
		"properties": {
			"gene":           {"type": "string", "maxLength": 64},
			"species":        {"type": "string", "maxLength": 64},
			"tissue":         {"type": "string", "maxLength": 64},
			"tss_kb":         {"type": "integer", "minimum": 0, "maximum": 5000},
			"classes":        `+classList+`,
			"nbins":          {"type": "integer", "minimum": 1, "maximum": 500},
			"normalize_rows": {"type": "boolean"},
			"mark_tss":       {"type": "boolean"},
			"stack_tracks":   {"type": "boolean"},
			"show_gene":      {"type": "boolean"},
			"show_snps":      {"type": "boolean"},
			"log_expression": {"type": "boolean"},
			"enhanced":       {"type": "boolean"}
		}
	}`)

	CTCFSchema = mustSchema("ctcf.json", `{
		"type": "object",
		"required": ["gene"],
		"properties": {
			"gene":             {"type": "string", "minLength": 1, "maxLength": 64},
			"species":          {"type": "string", "maxLength": 64},
			"link_mode":        {"type": "string", "enum": ["gene", "tad"]},
			"tss_kb_ctcf":      {"type": "integer", "minimum": 0, "maximum": 5000},
			"domain_snap_tss":  {"type": "boolean"},
			"ctcf_cons_groups": `+classList+`,
			"enh_cons_groups":  `+classList+`,
			"ctcf_dist_cap_kb": {"type": "integer", "minimum": 0, "maximum": 5000}
		}
	}`)

	TraitsSchema = mustSchema("traits.json", `{
		"type": "object",
		"properties": {
			"search":   {"type": "string", "maxLength": 200},
			"category": {"type": "string", "maxLength": 200},
			"limit":    {"type": ["integer", "null"], "minimum": 0}
		}
	}`)

	TraitSNPsSchema = mustSchema("trait_snps.json", `{
		"type": "object",
		"required": ["trait"],
		"properties": {
			"trait": {"type": "string", "minLength": 1, "maxLength": 500},
			"limit": {"type": ["integer", "null"], "minimum": 0}
		}
	}`)

	ExportSchema = mustSchema("export.json", `{
		"type": "object",
		"properties": {
			"gene":      {"type": "string", "maxLength": 64},
			"species":   {"type": "string", "maxLength": 64},
			"tissue":    {"type": "string", "maxLength": 64},
			"tss_kb":    {"type": "integer", "minimum": 0, "maximum": 5000},
			"classes":   `+classList+`,
			"type":      {"type": "string", "enum": ["csv"]},
			"data_type": {"type": "string", "enum": ["enhancers", "gwas", "ctcf"]}
		}
	}`)
)

func mustSchema(name, src string) *jsonschema.Schema {
	return jsonschema.MustCompileString(name, src)
}

// Decode reads a JSON body, validates it against schema and unmarshals it
// over dst, so fields missing from the body keep dst's defaults. An empty
// body is treated as {}. Every failure wraps genome.ErrInvalidArgument.
func Decode(r io.Reader, schema *jsonschema.Schema, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(r, MaxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", genome.ErrInvalidArgument, err)
	}
	if len(raw) > MaxBodyBytes {
		return fmt.Errorf("%w: body exceeds %d bytes", genome.ErrInvalidArgument, MaxBodyBytes)
	}
	if strings.TrimSpace(string(raw)) == "" {
		raw = []byte("{}")
	}
	if !gjson.ValidBytes(raw) {
		return fmt.Errorf("%w: body is not valid JSON", genome.ErrInvalidArgument)
	}
	if !gjson.ParseBytes(raw).IsObject() {
		return fmt.Errorf("%w: body must be a JSON object", genome.ErrInvalidArgument)
	}

	if schema != nil {
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("%w: %v", genome.ErrInvalidArgument, err)
		}
		if err := schema.Validate(doc); err != nil {
			return fmt.Errorf("%w: %s", genome.ErrInvalidArgument, validationMessage(err))
		}
	}

	// null limits decode as zero, meaning "no limit"
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", genome.ErrInvalidArgument, err)
	}
	return nil
}

// validationMessage flattens a schema error to its first leaf cause.
func validationMessage(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + ve.Message
}
