// Package golearn bridges scrub frames and golearn DenseInstances so a
// cleaned frame can feed model training directly.
package golearn

import (
	"time"

	"github.com/sjwhitworth/golearn/base"

	"github.com/wdm0006/scrub/pkg/scrub"
)

// ToInstances converts a frame into golearn DenseInstances. Numeric
// columns become float attributes, everything else categorical. If
// classColumn names a column it is marked as the class attribute;
// empty means no class attribute is set. Null cells are left at the
// instance's zero value, so run drop_nulls or fill_nulls first.
func ToInstances(f *scrub.Frame, classColumn string) (*base.DenseInstances, error) {
	schema := f.Schema()
	attrs := make([]base.Attribute, len(schema.Columns))
	for i, cs := range schema.Columns {
		if cs.Type.Numeric() {
			attrs[i] = base.NewFloatAttribute(cs.Name)
			continue
		}
		ca := new(base.CategoricalAttribute)
		ca.SetName(cs.Name)
		attrs[i] = ca
	}

	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		specs[i] = inst.AddAttribute(a)
	}
	if err := inst.Extend(f.Rows()); err != nil {
		return nil, err
	}

	for c, cs := range schema.Columns {
		col, _ := f.ColumnByName(cs.Name)
		for r := 0; r < f.Rows(); r++ {
			v, ok := col.Value(r)
			if !ok {
				continue
			}
			if cs.Type.Numeric() {
				inst.Set(specs[c], r, base.PackFloatToBytes(asFloat(v)))
			} else {
				inst.Set(specs[c], r, attrs[c].GetSysValFromString(asString(v)))
			}
		}
	}

	if classColumn != "" {
		for i, cs := range schema.Columns {
			if cs.Name == classColumn {
				if err := inst.AddClassAttribute(attrs[i]); err != nil {
					return nil, err
				}
				break
			}
		}
	}
	return inst, nil
}

// FromInstances converts golearn DenseInstances back into a frame.
// Float attributes map to float columns, the rest to string columns.
func FromInstances(inst *base.DenseInstances) (*scrub.Frame, error) {
	attrs := inst.AllAttributes()
	schema := scrub.Schema{Columns: make([]scrub.ColumnSchema, len(attrs))}
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		kind := scrub.KindString
		if _, ok := a.(*base.FloatAttribute); ok {
			kind = scrub.KindFloat
		}
		schema.Columns[i] = scrub.ColumnSchema{Name: a.GetName(), Type: kind, Nullable: true}
		spec, err := inst.GetAttribute(a)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
	}

	f := scrub.NewFrame(schema)
	_, nrows := inst.Size()
	for r := 0; r < nrows; r++ {
		f.AppendNullRow()
		for c, cs := range schema.Columns {
			raw := inst.Get(specs[c], r)
			if cs.Type == scrub.KindFloat {
				_ = f.SetCell(r, cs.Name, base.UnpackBytesToFloat(raw))
			} else {
				_ = f.SetCell(r, cs.Name, specs[c].GetAttribute().GetStringFromSysVal(raw))
			}
		}
	}
	return f, nil
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case int64:
		return float64(t)
	case float64:
		return t
	}
	return 0
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case time.Time:
		return t.Format(time.RFC3339)
	}
	return ""
}
