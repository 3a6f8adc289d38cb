package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/bndr/gotabulate"

	"option-tagger/internal/plan"
)

const (
	formatTable = "table"
	formatYAML  = "yaml"
	formatJSON  = "json"
)

var planHeaders = []string{"Type", "Field", "Shape", "Markers", "Case", "Tag"}

// planRows lists one row per field. Unless all is set, fields without
// markers that are left as declared are omitted.
func planRows(exported *plan.ExportedPlan, all bool) [][]string {
	var rows [][]string

	for _, s := range exported.Structs {
		for _, f := range s.Fields {
			if !all && len(f.Markers) == 0 && !f.Changed && f.Conflict == nil {
				continue
			}

			tag := f.Tag
			if f.Changed {
				tag = f.Original + " -> " + f.Tag
			}
			if f.Conflict != nil {
				tag = f.Conflict.Detail()
			}

			rows = append(rows, []string{
				s.Type,
				f.Path,
				f.Shape,
				strings.Join(f.Markers, ","),
				f.Case.String(),
				tag,
			})
		}
	}

	return rows
}

func renderTable(headers []string, rows [][]string) string {
	t := gotabulate.Create(rows)
	t.SetHeaders(headers)
	t.SetAlign("left")
	t.SetWrapStrings(true)
	t.SetMaxCellSize(60)
	return t.Render("grid")
}

func writePlan(w io.Writer, p *plan.ResolvedPlan, format string, all bool) error {
	switch format {
	case formatYAML:
		data, err := plan.ExportYAML(p)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case formatJSON:
		data, err := plan.ExportJSON(p)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case formatTable, "":
		rows := planRows(plan.Export(p), all)
		if len(rows) == 0 {
			_, err := fmt.Fprintln(w, "no annotated fields")
			return err
		}
		_, err := fmt.Fprint(w, renderTable(planHeaders, rows))
		return err
	default:
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown format %q (want table, yaml or json)", format))
	}
}
