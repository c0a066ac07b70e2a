package rig

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// ID addresses a component slot in its Artboard. Slots are never reused, so
// an ID held after removal resolves to nil rather than to a newer component.
type ID uint32

// NoID is the zero ID. It is never assigned and means "no reference".
const NoID ID = 0

// Tendon binds one bone to a skin. InverseBind maps the bone's world space
// at bind time back to the skin's bind space.
type Tendon struct {
	BoneID      ID
	InverseBind Mat2D
}

// Component is the fundamental scene graph element. A single flat struct is
// used for all component types to avoid interface dispatch on the hot path;
// fields that do not apply to a type are ignored.
//
// Components are owned by their Artboard. References between components
// (ParentID, TargetID, tendon bones, dependents) are slot IDs, never pointers.
type Component struct {
	// Identity
	ID   ID
	Name string
	Type ComponentType

	// Hierarchy, resolved during Build.
	ParentID ID

	// Graph state
	artboard     *Artboard
	dirt         ComponentDirt
	graphOrder   int
	dependents   []ID
	extraDeps    []ID
	buildErr     error
	updateFailed bool

	// Property bag for registered properties without a dedicated field.
	props map[PropertyKey]float64

	// Transform (Node, Bone). MeshVertex reuses X and Y.
	X, Y           float64
	Rotation       float64
	ScaleX, ScaleY float64
	Opacity        float64
	localTransform Mat2D
	worldTransform Mat2D
	renderOpacity  float64
	constraints    []ID

	// Bone
	Length float64

	// Skin
	Tendons       []Tendon
	BindTransform Mat2D
	palette       []Mat2D

	// Mesh
	Indices      []uint16
	Image        *ebiten.Image
	BlendMode    BlendMode
	vertexIDs    []ID
	skinID       ID
	deformed     []Vec2
	vertexBuffer []ebiten.Vertex // nil when stale; rebuilt on draw

	// MeshVertex. BoneIndices are 1-based into the skin's tendons, 0 = unused.
	U, V        float64
	BoneIndices [4]uint8
	Weights     [4]float64

	// Shape
	Shape         ShapeKind
	Width, Height float64
	Color         Color
	path          RenderPath
	paint         Paint

	// TranslationConstraint
	TargetID ID
	Strength float64

	// OnUpdate runs after the built-in update for the component's type. A
	// returned error leaves the dirt pending so the update is retried.
	OnUpdate func(c *Component, dirt ComponentDirt) error
}

// componentDefaults sets the common default field values shared by all constructors.
func componentDefaults(c *Component) {
	c.ScaleX = 1
	c.ScaleY = 1
	c.Opacity = 1
	c.Strength = 1
	c.Color = ColorWhite
	c.graphOrder = -1
	c.localTransform = IdentityMat2D
	c.worldTransform = IdentityMat2D
	c.BindTransform = IdentityMat2D
	c.renderOpacity = 1
}

func newComponent(name string, typ ComponentType) *Component {
	c := &Component{Name: name, Type: typ}
	componentDefaults(c)
	return c
}

// NewNode creates a transform container.
func NewNode(name string) *Component {
	return newComponent(name, ComponentTypeNode)
}

// NewBone creates a bone of the given length. A bone parented to another bone
// starts at its parent's tip.
func NewBone(name string, length float64) *Component {
	c := newComponent(name, ComponentTypeBone)
	c.Length = length
	return c
}

// NewSkin creates a skin over the given tendons. Its parent must be a mesh.
func NewSkin(name string, tendons ...Tendon) *Component {
	c := newComponent(name, ComponentTypeSkin)
	c.Tendons = tendons
	return c
}

// NewMesh creates an image mesh. Vertices are added as MeshVertex children.
func NewMesh(name string, img *ebiten.Image, indices []uint16) *Component {
	c := newComponent(name, ComponentTypeMesh)
	c.Image = img
	c.Indices = indices
	return c
}

// NewMeshVertex creates a mesh vertex at (x, y) with texture coordinates (u, v)
// in [0, 1].
func NewMeshVertex(name string, x, y, u, v float64) *Component {
	c := newComponent(name, ComponentTypeMeshVertex)
	c.X, c.Y = x, y
	c.U, c.V = u, v
	return c
}

// NewShape creates a filled shape of the given kind and size.
func NewShape(name string, kind ShapeKind, width, height float64, color Color) *Component {
	c := newComponent(name, ComponentTypeShape)
	c.Shape = kind
	c.Width, c.Height = width, height
	c.Color = color
	return c
}

// NewTranslationConstraint creates a constraint that moves its parent's world
// translation toward the target's by strength in [0, 1].
func NewTranslationConstraint(name string, target ID, strength float64) *Component {
	c := newComponent(name, ComponentTypeTranslationConstraint)
	c.TargetID = target
	c.Strength = strength
	return c
}

// NewCustom creates a component whose update is entirely user defined. Dirt
// cascades to and from custom components unchanged.
func NewCustom(name string, onUpdate func(c *Component, dirt ComponentDirt) error) *Component {
	c := newComponent(name, ComponentTypeCustom)
	c.OnUpdate = onUpdate
	return c
}

// Artboard returns the owning artboard, or nil once removed.
func (c *Component) Artboard() *Artboard {
	return c.artboard
}

// GraphOrder returns the position assigned by the last build, or -1 when the
// component is not part of the execution order.
func (c *Component) GraphOrder() int {
	return c.graphOrder
}

// Dependents returns the IDs of components revisited when this one changes.
// The returned slice MUST NOT be mutated by the caller.
func (c *Component) Dependents() []ID {
	return c.dependents
}

// BuildErr returns the reason this component was excluded by the last build.
func (c *Component) BuildErr() error {
	return c.buildErr
}

// WorldTransform returns the resolved world transform. Drawables report their
// parent's world transform.
func (c *Component) WorldTransform() Mat2D {
	return c.worldTransform
}

// RenderOpacity returns the opacity inherited through the hierarchy.
func (c *Component) RenderOpacity() float64 {
	return c.renderOpacity
}

// MarkDirty marks flags on the component and cascades them to dependents.
// Detached components only record the flags.
func (c *Component) MarkDirty(flags ComponentDirt) bool {
	if c.artboard == nil {
		return c.AddDirt(flags)
	}
	return c.artboard.markDirty(c, flags)
}

// SetProperty writes a property and marks the dirt it implies. Reports false
// when the value is unchanged or the key does not apply to this component.
func (c *Component) SetProperty(key PropertyKey, value float64) bool {
	target, dirt, changed := c.setProperty(key, value)
	if !changed {
		return false
	}
	if target != nil && dirt != DirtNone {
		target.MarkDirty(dirt)
	}
	return true
}

// addDependent registers id to be revisited when c changes.
func (c *Component) addDependent(id ID) {
	for _, d := range c.dependents {
		if d == id {
			return
		}
	}
	c.dependents = append(c.dependents, id)
}

// isLive reports whether the component survived the last build.
func (c *Component) isLive() bool {
	return c != nil && c.buildErr == nil
}
