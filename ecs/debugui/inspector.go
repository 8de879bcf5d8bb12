// Package debugui provides a read-only Dear ImGui inspector for an
// ecs.Registry: live archetype list, per-archetype component sets and row
// counts, and a rolling frame-time graph. Grounded on the teacher's
// ecs/debugui package (archetype_viewer.go's sortable table and
// performance_stats.go's frame-time history), narrowed to inspection only
// — the teacher's entity browser, component editor, spawn panel, and
// query debugger all mutated state by reflecting into a *ecs.Storage this
// module's generational Handle model does not expose, and are out of
// scope for a storage-engine-level debug view.
package debugui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/silverware-games/ecs/ecs"
)

// archetypeRow is one cached, display-ready snapshot of an archetype.
type archetypeRow struct {
	id             uint64
	componentTypes []string
	rowCount       int
	changeCounter  uint64
}

// Inspector renders a read-only view of a Registry's current archetype
// table. Construct one per window and call Render once per frame.
type Inspector struct {
	registry *ecs.Registry

	rows          []archetypeRow
	sortColumn    int
	sortAscending bool

	frameHistory []float32
	frameIndex   int
	lastFrame    time.Time
}

// NewInspector builds an Inspector over r, keeping historyFrames samples
// of frame time for the graph (performance_stats.go's frameHistory).
func NewInspector(r *ecs.Registry, historyFrames int) *Inspector {
	if historyFrames <= 0 {
		historyFrames = 120
	}
	return &Inspector{
		registry:      r,
		sortColumn:    2,
		sortAscending: false,
		frameHistory:  make([]float32, historyFrames),
		lastFrame:     time.Now(),
	}
}

func (ins *Inspector) refresh() {
	ins.rows = ins.rows[:0]
	ins.registry.ForEachArchetype(func(a *ecs.Archetype) {
		ids := a.Types().Ids()
		names := make([]string, len(ids))
		for i, id := range ids {
			names[i] = ecs.TypeName(id)
		}
		ins.rows = append(ins.rows, archetypeRow{
			id:             a.ID(),
			componentTypes: names,
			rowCount:       a.Size(),
			changeCounter:  a.ChangeCounter(),
		})
	})
	ins.sortRows()
}

func (ins *Inspector) sortRows() {
	sort.Slice(ins.rows, func(i, j int) bool {
		a, b := ins.rows[i], ins.rows[j]
		var less bool
		switch ins.sortColumn {
		case 0:
			less = a.id < b.id
		case 1:
			less = strings.Join(a.componentTypes, ",") < strings.Join(b.componentTypes, ",")
		default:
			less = a.rowCount < b.rowCount
		}
		if !ins.sortAscending {
			return !less
		}
		return less
	})
}

func (ins *Inspector) tickFrameTime() {
	now := time.Now()
	dt := float32(now.Sub(ins.lastFrame).Seconds()) * 1000
	ins.lastFrame = now
	ins.frameHistory[ins.frameIndex] = dt
	ins.frameIndex = (ins.frameIndex + 1) % len(ins.frameHistory)
}

// Render draws the inspector window. Call once per frame from the host
// application's ImGui render pass.
func (ins *Inspector) Render() {
	ins.tickFrameTime()

	if !imgui.BeginV("ECS Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ins.refresh()

	total := ins.registry.Size()
	imgui.Text(fmt.Sprintf("Total entities: %d", total))
	imgui.Text(fmt.Sprintf("Archetypes: %d", len(ins.rows)))

	var avg float32
	for _, ft := range ins.frameHistory {
		avg += ft
	}
	avg /= float32(len(ins.frameHistory))
	imgui.Text(fmt.Sprintf("Avg frame time: %.2f ms (%.0f fps)", avg, 1000/avg))
	if len(ins.frameHistory) > 0 {
		imgui.PlotLinesFloatPtr("##frametime", &ins.frameHistory[0], int32(len(ins.frameHistory)))
	}

	imgui.Separator()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("ArchetypeTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Archetype")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Rows")
		imgui.TableSetupColumn("Changes")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			ins.sortColumn = int(spec.ColumnIndex())
			ins.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			ins.sortRows()
			sortSpecs.SetSpecsDirty(false)
		}

		for _, row := range ins.rows {
			imgui.TableNextRow()
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("0x%X", row.id))
			imgui.TableNextColumn()
			imgui.Text(strings.Join(row.componentTypes, ", "))
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.rowCount))
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.changeCounter))
		}

		imgui.EndTable()
	}

	imgui.End()
}
