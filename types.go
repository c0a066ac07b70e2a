package rig

import "github.com/hajimehoshi/ebiten/v2"

// Color is straight (not premultiplied) RGBA in [0, 1]. Renderers premultiply
// on submission.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default shape paint.
var ColorWhite = Color{1, 1, 1, 1}

type Vec2 struct {
	X, Y float64
}

// Rect is axis-aligned, Y down. Edges count as inside for both Contains and
// Intersects.
type Rect struct {
	X, Y, Width, Height float64
}

func (r Rect) Contains(x, y float64) bool {
	return r.X <= x && x <= r.X+r.Width && r.Y <= y && y <= r.Y+r.Height
}

func (r Rect) Intersects(o Rect) bool {
	return r.X <= o.X+o.Width && o.X <= r.X+r.Width &&
		r.Y <= o.Y+o.Height && o.Y <= r.Y+r.Height
}

// BlendMode is the compositing operation a mesh is drawn with.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // source-over
	BlendAdd                       // lighter
	BlendMultiply                  // src * dst, darkens
	BlendScreen                    // 1 - (1-src)(1-dst), brightens
)

var blendModes = [...]ebiten.Blend{
	BlendNormal: ebiten.BlendSourceOver,
	BlendAdd:    ebiten.BlendLighter,
	BlendMultiply: {
		BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
		BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
		BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
		BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	},
	BlendScreen: {
		BlendFactorSourceRGB:        ebiten.BlendFactorOne,
		BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
		BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
		BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	},
}

// EbitenBlend maps b to ebiten's blend; unknown modes draw source-over.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	if int(b) < len(blendModes) {
		return blendModes[b]
	}
	return ebiten.BlendSourceOver
}

// ComponentType is the stable type identifier of a Component. The set is
// closed; behavior is dispatched on it rather than through interfaces.
type ComponentType uint8

const (
	ComponentTypeNode                  ComponentType = iota // transform container
	ComponentTypeBone                                       // transform with a length, drives skins
	ComponentTypeSkin                                       // bone palette for a mesh
	ComponentTypeMesh                                       // image mesh, optionally skinned
	ComponentTypeMeshVertex                                 // one vertex of a mesh
	ComponentTypeShape                                      // filled parametric path
	ComponentTypeTranslationConstraint                      // pulls its parent toward a target
	ComponentTypeCustom                                     // user behavior via OnUpdate only
	componentTypeCount
)

var componentTypeNames = [componentTypeCount]string{
	"node", "bone", "skin", "mesh", "vertex", "shape", "constraint", "custom",
}

func (t ComponentType) String() string {
	if t < componentTypeCount {
		return componentTypeNames[t]
	}
	return "unknown"
}

// isTransform reports whether components of this type carry a world transform
// that children can inherit.
func (t ComponentType) isTransform() bool {
	return t == ComponentTypeNode || t == ComponentTypeBone
}

// isDrawable reports whether components of this type are handed to a Renderer.
func (t ComponentType) isDrawable() bool {
	return t == ComponentTypeMesh || t == ComponentTypeShape
}

// ShapeKind selects the parametric path generated by a shape component.
type ShapeKind uint8

const (
	ShapeRectangle ShapeKind = iota // Width x Height, centered on the origin
	ShapeEllipse                    // ellipse inscribed in Width x Height
)

// EventType identifies a kind of scene event.
type EventType uint8

const (
	EventBuildError    EventType = iota // a component was excluded by Build
	EventUpdateError                    // a component's update failed during a pass
	EventStateChanged                   // a state machine layer changed state
	EventAnimationDone                  // a playing instance finished and was released
)
