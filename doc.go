// Package rig is a retained-mode runtime for animated 2D rigs on [Ebitengine].
//
// A rig is an [Artboard] of components (nodes, bones, skins, meshes, shapes,
// constraints) connected by a dependency graph. Animations write property
// values; a single update pass then recomputes exactly the components those
// writes affected, in dependency order, before anything is drawn.
//
// # Quick start
//
// Load a rig, play one of its animations and advance it each frame:
//
//	r, err := rig.ParseRig(data)
//	if err != nil { ... }
//	scene := rig.NewScene(r.Artboard)
//	scene.PlayAnimation(r.Animation("idle"))
//
//	func (g *Game) Update() error        { g.scene.Update(); return nil }
//	func (g *Game) Draw(s *ebiten.Image) { g.scene.DrawCamera(s) }
//
// Or let [Run] own the window and game loop:
//
//	err := rig.Run(scene, rig.RunConfig{Title: "puppet", ShowFPS: true})
//
// # Components and the graph
//
// Every element is a [Component], addressed by its slot [ID] in the owning
// artboard. Create components with typed constructors ([NewNode], [NewBone],
// [NewSkin], [NewMesh], [NewMeshVertex], [NewShape],
// [NewTranslationConstraint], [NewCustom]) and place them with [Artboard.Add].
//
// [Artboard.Build] validates references, excludes components it cannot
// satisfy (each reported as a [BuildError]) and sorts the rest so that every
// component follows everything it reads. Structural changes rebuild lazily
// before the next update pass.
//
// # Dirt
//
// Property writes mark [ComponentDirt] flags. Marking cascades to dependents
// immediately, translated into the flags each dependent type reacts to, and
// stops as soon as no new bit is set. [Artboard.RunUpdatePass] sweeps the
// ordered list once, restarting only if an update dirties something it has
// already passed.
//
// # Animation
//
// [LinearAnimation] and [StateMachine] are shared, immutable definitions.
// Instances ([LinearAnimationInstance], [StateMachineInstance],
// [PropertyTween]) own their time and are advanced with explicit deltas.
// [Scene.Advance] advances and applies every playing instance, then runs one
// update pass. A [Stage] advances independent scenes in parallel.
//
// # Viewing
//
// A [Camera] attached with [Scene.SetCamera] pans, zooms and follows a
// component after each update pass. [Scene.DrawCamera] draws through it and
// skips drawables outside its visible bounds.
//
// # ECS integration
//
// Scene events (build and update errors, state changes, finished animations)
// can be forwarded to a [Donburi] world with the adapter in rig/ecs.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package rig
