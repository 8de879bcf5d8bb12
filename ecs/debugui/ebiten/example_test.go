package ebiten_test

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/silverware-games/ecs/ecs"
	"github.com/silverware-games/ecs/ecs/debugui"
	debugui_ebiten "github.com/silverware-games/ecs/ecs/debugui/ebiten"
)

type Position struct{ X, Y float32 }

// Game implements ebiten.Game and overlays the ECS inspector on top of
// whatever the host application draws.
type Game struct {
	registry     *ecs.Registry
	inspector    *debugui.Inspector
	imguiBackend *debugui_ebiten.ImguiBackend
}

func (g *Game) Update() error {
	g.imguiBackend.BeginFrame()
	g.inspector.Render()
	g.imguiBackend.EndFrame()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.imguiBackend.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.imguiBackend.Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// Example is compiled (and, since it carries no "// Output:" comment,
// never run) to document how to overlay debugui on an Ebiten game loop.
func Example() {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow("ECS Inspector", 1280, 720)
	imgui.CurrentIO().SetIniFilename("")

	registry := ecs.NewRegistry()
	ecs.RegisterComponent[Position](registry)
	registry.Create(&Position{X: 1, Y: 1})

	game := &Game{
		registry:     registry,
		inspector:    debugui.NewInspector(registry, 120),
		imguiBackend: &debugui_ebiten.ImguiBackend{EbitenBackend: backend},
	}

	if err := ebiten.RunGame(game); err != nil {
		panic(err)
	}
}
