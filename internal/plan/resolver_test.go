package plan

import (
	"context"
	"errors"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"option-tagger/internal/analyze"
	"option-tagger/internal/diagnostic"
	"option-tagger/internal/overlay"
)

const (
	storePkg     = "option-tagger/store"
	warehousePkg = "option-tagger/warehouse"
)

func loadGraph(t *testing.T, patterns ...string) *analyze.TypeGraph {
	t.Helper()

	graph, err := analyze.NewAnalyzer().LoadPackages(patterns...)
	require.NoError(t, err)

	return graph
}

func resolve(t *testing.T, graph *analyze.TypeGraph, ov *overlay.File, cfg ResolutionConfig) *ResolvedPlan {
	t.Helper()

	p, err := NewResolver(graph, ov, cfg).Resolve(context.Background())
	require.NoError(t, err)
	require.NotNil(t, p)

	return p
}

func fieldOf(t *testing.T, p *ResolvedPlan, pkg, typeName, path string) *ResolvedField {
	t.Helper()

	rs := p.Struct(analyze.TypeID{PkgPath: pkg, Name: typeName})
	require.NotNil(t, rs, "struct %s not resolved", typeName)

	rf := rs.Field(path)
	require.NotNil(t, rf, "field %s not resolved", path)

	return rf
}

func TestResolver_Store(t *testing.T) {
	p := resolve(t, loadGraph(t, storePkg), nil, DefaultConfig())
	require.True(t, p.Diagnostics.IsValid(), p.Diagnostics.Error())

	tests := []struct {
		typeName string
		path     string
		wantCase SemanticCase
		wantTag  string
	}{
		{"Product", "Product.Description", CaseNotRequired, "description,omitempty,default,with:unwrap_or_skip"},
		{"Product", "Product.DiscontinuedAt", CaseNullable, "discontinued_at,with:nullable"},
		{"Product", "Product.Name", CasePlainOptional, "name"},
		{"Customer", "Customer.Address", CaseNullable, "address,with:nullable"},
		{"Customer", "Customer.Nickname", CaseNullableAndNotRequired, "nickname,omitzero,default,with:double_option"},
		{"Customer", "Customer.Referrer", CaseNotRequired, "referrer_id,omitempty,default,with:unwrap_or_skip"},
		{"Customer", "Customer.Locale", CaseNotRequired, "locale,default:DefaultLocale,omitempty,with:unwrap_or_skip"},
		{"Customer", "Customer.Password", CaseSkipped, "-"},
		{"CustomerPatch", "CustomerPatch.Email", CaseNotRequired, "email,omitzero,default,with:unwrap_or_skip"},
		{"CustomerPatch", "CustomerPatch.Address", CaseNullableAndNotRequired, "address,omitzero,default,with:double_option"},
		{"CustomerPatch", "CustomerPatch.Settings", CasePlainOptional, "settings"},
		{"CustomerPatch", "CustomerPatch.Settings.Theme", CaseNotRequired, "theme,omitempty,default,with:unwrap_or_skip"},
		{"Order", "Order.Note", CasePlainOptional, "note"},
		{"Order", "Order.ShippedAt", CaseNullable, "shipped_at,with:nullable"},
		{"OrderItem", "OrderItem.Gift", CaseNotRequired, ",omitempty,default,with:unwrap_or_skip"},
		{"OrderItem", "OrderItem.Engraving", CasePlainOptional, "engraving,omitempty"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rf := fieldOf(t, p, storePkg, tt.typeName, tt.path)
			assert.Equal(t, tt.wantCase, rf.Case)
			assert.Equal(t, tt.wantTag, rf.Synthesized.String())
			assert.Nil(t, rf.Conflict)
		})
	}
}

func TestResolver_PlainFieldsAreIdentity(t *testing.T) {
	p := resolve(t, loadGraph(t, storePkg), nil, DefaultConfig())

	for _, rs := range p.Structs {
		for _, rf := range rs.Fields {
			if len(rf.Markers) > 0 {
				continue
			}

			assert.False(t, rf.Changed(), rf.Path)
			assert.Equal(t, rf.Original, rf.Synthesized, rf.Path)
		}
	}
}

func TestResolver_Warehouse(t *testing.T) {
	p := resolve(t, loadGraph(t, warehousePkg), nil, DefaultConfig())

	// Every field is resolved before reporting: all errors are present at once.
	require.Len(t, p.Diagnostics.Errors, 6, p.Diagnostics.Error())
	require.Len(t, p.Diagnostics.Warnings, 1)

	byField := map[string]diagnostic.Diagnostic{}
	for _, d := range p.Diagnostics.Errors {
		byField[d.FieldPath] = d
	}

	assert.Equal(t, diagnostic.CodeMalformedTypeShape, byField["Shipment.Carrier"].Code)
	assert.Contains(t, byField["Shipment.Carrier"].Message, "declared string")
	assert.Equal(t, diagnostic.CodeConflict, byField["Shipment.Tracking"].Code)
	assert.Contains(t, byField["Shipment.Tracking"].Message, `"nullable"`)
	assert.Contains(t, byField["Shipment.Tracking"].Message, `"with:base64"`)
	assert.Equal(t, diagnostic.CodeMalformedTypeShape, byField["Shipment.Weight"].Code)
	assert.Equal(t, diagnostic.CodeConflict, byField["Shipment.Internal"].Code)
	assert.Equal(t, diagnostic.CodeMalformedTypeShape, byField["Pallet.Depth"].Code)
	assert.Equal(t, diagnostic.CodeMalformedTypeShape, byField["Pallet.Backup"].Code)
	assert.Contains(t, byField["Pallet.Backup"].Message, "declared **string")

	for _, d := range p.Diagnostics.Errors {
		assert.NotEmpty(t, d.Position, d.FieldPath)
		assert.Equal(t, diagnostic.DiagnosticError, d.Severity)
	}

	warn := p.Diagnostics.Warnings[0]
	assert.Equal(t, diagnostic.CodeUnknownMarker, warn.Code)
	assert.Equal(t, "Shipment.Dock", warn.FieldPath)
	assert.Equal(t, []string{"nullable"}, warn.Suggestions)

	// Valid fields next to invalid ones are still resolved.
	assert.Equal(t, CaseNotRequired, fieldOf(t, p, warehousePkg, "Shipment", "Shipment.Notes").Case)
	assert.Equal(t, CaseNullable, fieldOf(t, p, warehousePkg, "Pallet", "Pallet.Label").Case)
	assert.Equal(t, CasePlainOptional, fieldOf(t, p, warehousePkg, "Shipment", "Shipment.Dock").Case)

	// Conflicting fields keep their declared directives.
	tracking := fieldOf(t, p, warehousePkg, "Shipment", "Shipment.Tracking")
	assert.Equal(t, CaseConflict, tracking.Case)
	assert.Equal(t, "tracking,with:base64", tracking.Synthesized.String())
	assert.False(t, tracking.Changed())
}

func TestResolver_DiagnosticOrder(t *testing.T) {
	graph := loadGraph(t, warehousePkg)

	want := resolve(t, graph, nil, DefaultConfig()).Diagnostics.Errors

	var paths []string
	for _, d := range want {
		paths = append(paths, d.FieldPath)
	}

	assert.Equal(t, []string{
		"Shipment.Carrier", "Shipment.Tracking", "Shipment.Weight", "Shipment.Internal", "Pallet.Depth", "Pallet.Backup",
	}, paths)

	// Same order with any number of workers.
	for _, workers := range []int{1, 2, 8} {
		cfg := DefaultConfig()
		cfg.Workers = workers

		assert.Equal(t, want, resolve(t, graph, nil, cfg).Diagnostics.Errors)
	}
}

func TestResolver_SkipPolicyIgnore(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SkipPolicy = SkipIgnore

	p := resolve(t, loadGraph(t, warehousePkg), nil, cfg)

	internal := fieldOf(t, p, warehousePkg, "Shipment", "Shipment.Internal")
	assert.Equal(t, CaseSkipped, internal.Case)
	assert.Equal(t, "-", internal.Synthesized.String())
	assert.Len(t, p.Diagnostics.Errors, 5)
}

func TestResolver_Overlay(t *testing.T) {
	ov := &overlay.File{
		Version: overlay.CurrentVersion,
		Types: []overlay.TypeMarkers{
			{Type: "store.Order", Fields: map[string][]string{"Note": {"not_required"}}},
			{Type: "store.Customer", Fields: map[string][]string{"Address": {"nullable"}}},
		},
	}

	p := resolve(t, loadGraph(t, storePkg), ov, DefaultConfig())
	require.True(t, p.Diagnostics.IsValid(), p.Diagnostics.Error())

	note := fieldOf(t, p, storePkg, "Order", "Order.Note")
	assert.Equal(t, CaseNotRequired, note.Case)
	assert.Equal(t, []string{"not_required"}, note.Markers)
	assert.Equal(t, "note,omitempty,default,with:unwrap_or_skip", note.Synthesized.String())

	// Overlay markers merge with tag markers.
	address := fieldOf(t, p, storePkg, "Customer", "Customer.Address")
	assert.Equal(t, []string{"nullable"}, address.Markers)
	assert.Equal(t, CaseNullable, address.Case)
}

func TestResolver_OverlayErrors(t *testing.T) {
	ov := &overlay.File{
		Version: overlay.CurrentVersion,
		Types:   []overlay.TypeMarkers{{Type: "store.Ordr"}},
	}

	p := resolve(t, loadGraph(t, storePkg), ov, DefaultConfig())
	require.Len(t, p.Diagnostics.Errors, 1)
	assert.Equal(t, diagnostic.CodeOverlayType, p.Diagnostics.Errors[0].Code)
}

func TestResolver_InvalidConfig(t *testing.T) {
	graph := analyze.NewTypeGraph()

	cfg := DefaultConfig()
	cfg.SkipPolicy = "drop"

	_, err := NewResolver(graph, nil, cfg).Resolve(context.Background())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))

	cfg = DefaultConfig()
	cfg.MarkerTag = "json"

	_, err = NewResolver(graph, nil, cfg).Resolve(context.Background())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestResolver_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewResolver(loadGraph(t, storePkg), nil, DefaultConfig()).Resolve(ctx)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
}

func TestResolver_CustomTagKeys(t *testing.T) {
	graph := analyze.NewTypeGraph()
	s := &analyze.StructInfo{
		ID: analyze.TypeID{PkgPath: "example/api", Name: "Row"},
		Fields: []analyze.FieldInfo{
			{Name: "A", Path: "Row.A", Shape: analyze.ShapeSingle, Tag: `yaml:"a" marks:"nullable"`},
			{Name: "B", Path: "Row.B", Shape: analyze.ShapeSingle, Tag: `yaml:"b" opt:"nullable"`},
		},
	}
	graph.Structs[s.ID] = s
	graph.Packages = []*analyze.PackageInfo{{Path: "example/api", Name: "api", Structs: []*analyze.StructInfo{s}}}

	cfg := DefaultConfig()
	cfg.MarkerTag = "marks"
	cfg.DirectiveTag = "yaml"

	p := resolve(t, graph, nil, cfg)
	assert.Equal(t, "a,with:nullable", p.Structs[0].Fields[0].Synthesized.String())
	assert.Equal(t, CasePlainOptional, p.Structs[0].Fields[1].Case)
}

func TestResolver_ValuedMarker(t *testing.T) {
	graph := analyze.NewTypeGraph()
	s := &analyze.StructInfo{
		ID: analyze.TypeID{PkgPath: "example/api", Name: "Row"},
		Fields: []analyze.FieldInfo{
			{Name: "A", Path: "Row.A", Shape: analyze.ShapeSingle, Layer: analyze.LayerPointer, Tag: `json:"a" opt:"nullable:true"`},
			{Name: "B", Path: "Row.B", Shape: analyze.ShapeSingle, Layer: analyze.LayerPointer, Tag: `json:"b" opt:"nullable:false"`},
		},
	}
	graph.Structs[s.ID] = s
	graph.Packages = []*analyze.PackageInfo{{Path: "example/api", Name: "api", Structs: []*analyze.StructInfo{s}}}

	p := resolve(t, graph, nil, DefaultConfig())
	assert.Empty(t, p.Diagnostics.Errors)
	require.Len(t, p.Diagnostics.Warnings, 2)

	for i, w := range p.Diagnostics.Warnings {
		assert.Equal(t, diagnostic.CodeUnknownMarker, w.Code)
		assert.Contains(t, w.Message, "takes no value")
		assert.Equal(t, []string{"nullable"}, w.Suggestions)

		rf := p.Structs[0].Fields[i]
		assert.Equal(t, CasePlainOptional, rf.Case)
		assert.False(t, rf.Intent.Nullable)
		assert.Equal(t, rf.Original.String(), rf.Synthesized.String())
	}
}

func TestResolver_MalformedTag(t *testing.T) {
	graph := analyze.NewTypeGraph()
	s := &analyze.StructInfo{
		ID: analyze.TypeID{PkgPath: "example/api", Name: "Row"},
		Fields: []analyze.FieldInfo{
			{Name: "A", Path: "Row.A", Shape: analyze.ShapeSingle, Tag: `json:"a" opt:nullable`},
		},
	}
	graph.Structs[s.ID] = s
	graph.Packages = []*analyze.PackageInfo{{Path: "example/api", Name: "api", Structs: []*analyze.StructInfo{s}}}

	p := resolve(t, graph, nil, DefaultConfig())
	require.Len(t, p.Diagnostics.Errors, 1)
	assert.Equal(t, diagnostic.CodeMalformedTag, p.Diagnostics.Errors[0].Code)
	assert.Equal(t, CaseConflict, p.Structs[0].Fields[0].Case)
}

type recordingSink struct {
	names []string
	err   error
}

func (s *recordingSink) AddStruct(rs *ResolvedStruct) error {
	s.names = append(s.names, rs.Struct.ID.Name)
	return s.err
}

func TestResolver_SchemaSink(t *testing.T) {
	graph := loadGraph(t, storePkg)

	sink := &recordingSink{}
	_, err := NewResolver(graph, nil, DefaultConfig()).WithSchemaSink(sink).Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Option", "Product", "Customer", "CustomerPatch", "Order", "OrderItem"}, sink.names)

	failing := &recordingSink{err: errors.New("boom")}
	_, err = NewResolver(graph, nil, DefaultConfig()).WithSchemaSink(failing).Resolve(context.Background())
	require.ErrorContains(t, err, "boom")
}

func TestResolver_SchemaSinkSkippedOnErrors(t *testing.T) {
	sink := &recordingSink{}
	p, err := NewResolver(loadGraph(t, warehousePkg), nil, DefaultConfig()).WithSchemaSink(sink).Resolve(context.Background())
	require.NoError(t, err)
	assert.True(t, p.Diagnostics.HasErrors())
	assert.Empty(t, sink.names)
}
