package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pydidas/pydidas-go/internal/dataset"
	"github.com/pydidas/pydidas-go/internal/param"
	"github.com/pydidas/pydidas-go/internal/plugin"
	"github.com/pydidas/pydidas-go/internal/scancontext"
	"github.com/pydidas/pydidas-go/internal/workflow"
)

type constShapePlugin struct {
	plugin.Base
	shape []int
}

func newConstShapePlugin(name string, shape []int) plugin.Plugin {
	return &constShapePlugin{Base: plugin.NewBase(name, plugin.Proc, param.NewCollection(), 2, len(shape)), shape: shape}
}
func (p *constShapePlugin) PreExecute() error { return nil }
func (p *constShapePlugin) Execute(task any, kw map[string]any) (*dataset.Dataset, map[string]any, error) {
	return dataset.Zeros(p.shape), kw, nil
}
func (p *constShapePlugin) CalculateResultShape() ([]int, error) { return p.shape, nil }
func (p *constShapePlugin) Clone() plugin.Plugin {
	return &constShapePlugin{Base: p.CloneBase(), shape: p.shape}
}

func buildTestApp(t *testing.T) *WorkflowApp {
	t.Helper()
	scan := scancontext.New()
	require.NoError(t, scan.Params().SetValue("scan_dim", 1))
	require.NoError(t, scan.Params().SetValue("scan_dim0_n_points", 4))

	tree := workflow.New()
	_, err := tree.CreateAndAddNode(newConstShapePlugin("root", []int{4}), nil, false)
	require.NoError(t, err)

	return NewWorkflowApp(scan, tree)
}

func TestWorkflowAppLifecycle(t *testing.T) {
	a := buildTestApp(t)
	require.NoError(t, a.MultiprocessingPreRun())
	tasks, err := a.MultiprocessingGetTasks()
	require.NoError(t, err)
	assert.Len(t, tasks, 4)
	assert.True(t, a.MultiprocessingCarryOn())

	result, err := a.MultiprocessingFunc(0)
	require.NoError(t, err)
	datasets, ok := result.(map[int]*dataset.Dataset)
	require.True(t, ok)
	assert.Contains(t, datasets, 0)
}

func TestWorkflowAppStoreResultsDelegates(t *testing.T) {
	a := buildTestApp(t)
	require.NoError(t, a.MultiprocessingPreRun())

	var stored []any
	a.StoreResults = func(task any, result map[int]*dataset.Dataset) error {
		stored = append(stored, task)
		return nil
	}
	result, err := a.MultiprocessingFunc(1)
	require.NoError(t, err)
	require.NoError(t, a.MultiprocessingStoreResults(1, result))
	assert.Equal(t, []any{1}, stored)
}

func TestWorkflowAppCopyCloneModeClearsStoreResults(t *testing.T) {
	a := buildTestApp(t)
	a.StoreResults = func(task any, result map[int]*dataset.Dataset) error { return nil }

	cloned := a.Copy(true).(*WorkflowApp)
	assert.Nil(t, cloned.StoreResults)

	notCloned := a.Copy(false).(*WorkflowApp)
	assert.NotNil(t, notCloned.StoreResults)
}
