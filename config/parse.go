package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// ParseConfig decodes the HCL in configString into target
func ParseConfig[T any](configString []byte, filename string, startPos hcl.Pos, target *T) error {
	// parse the config
	file, diags := hclsyntax.ParseConfig(configString, filename, startPos)
	if diags.HasErrors() {
		return hclDiagsToError("failed to parse config", diags)
	}
	// create empty eval context
	evalCtx := &hcl.EvalContext{
		Variables: make(map[string]cty.Value),
		Functions: make(map[string]function.Function),
	}
	// decode the body into the target struct
	moreDiags := gohcl.DecodeBody(file.Body, evalCtx, target)
	diags = append(diags, moreDiags...)
	if diags.HasErrors() {
		return hclDiagsToError("failed to parse config", diags)
	}
	return nil
}

func hclDiagsToError(prefix string, diags hcl.Diagnostics) error {
	var msgs []string
	for _, d := range diags.Errs() {
		msgs = append(msgs, d.Error())
	}
	if len(msgs) == 0 {
		return errors.New(prefix)
	}
	return fmt.Errorf("%s: %s", prefix, strings.Join(msgs, "; "))
}
