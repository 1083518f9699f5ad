package plugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/layerspec/pkg/errors"
	"github.com/matzehuels/layerspec/pkg/spec"
)

type stubPlugin struct {
	Threshold int
}

func (*stubPlugin) Init(context.Context, Host) error                  { return nil }
func (*stubPlugin) SpecReady(context.Context, Host, *spec.Spec) error { return nil }
func (*stubPlugin) RenderComplete(context.Context, Host) error        { return nil }

func stubFactory(decode func(any) error) (Plugin, error) {
	p := &stubPlugin{Threshold: 5}
	if err := decode(p); err != nil {
		return nil, err
	}
	return p, nil
}

func TestRegisterAndNew(t *testing.T) {
	Register("stub-a", stubFactory)
	t.Cleanup(func() { unregister("stub-a") })

	p, err := New("stub-a", nil)
	require.NoError(t, err)
	assert.Equal(t, 5, p.(*stubPlugin).Threshold)

	p, err = New("stub-a", func(v any) error {
		v.(*stubPlugin).Threshold = 9
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 9, p.(*stubPlugin).Threshold)
}

func TestNewDecodeError(t *testing.T) {
	Register("stub-b", stubFactory)
	t.Cleanup(func() { unregister("stub-b") })

	_, err := New("stub-b", func(any) error { return assert.AnError })
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestLookupMissing(t *testing.T) {
	_, err := Lookup("does-not-exist")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodePluginNotFound, errors.GetCode(err))
}

func TestRegisterPanics(t *testing.T) {
	Register("stub-c", stubFactory)
	t.Cleanup(func() { unregister("stub-c") })

	assert.Panics(t, func() { Register("stub-c", stubFactory) }, "duplicate")
	assert.Panics(t, func() { Register("stub-d", nil) }, "nil factory")
	assert.Panics(t, func() { Register("", stubFactory) }, "empty name")
}

func TestNamesSorted(t *testing.T) {
	Register("zz-stub", stubFactory)
	Register("aa-stub", stubFactory)
	t.Cleanup(func() {
		unregister("zz-stub")
		unregister("aa-stub")
	})

	names := Names()
	assert.Contains(t, names, "aa-stub")
	assert.Contains(t, names, "zz-stub")
	assert.IsNonDecreasing(t, names)
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Code: errors.ErrCodeNotApplicable, Message: "y is categorical"}
	assert.Equal(t, "y is categorical", d.String())
	d.Path = "unit/units[0]"
	assert.Equal(t, "unit/units[0]: y is categorical", d.String())
}
