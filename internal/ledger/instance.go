package ledger

// Object type names used as registry keys and table-dispatch tags.
const (
	TypeBook         = "book"
	TypeCommodity    = "commodity"
	TypeAccount      = "account"
	TypeLot          = "lot"
	TypeTransaction  = "trans"
	TypeSchedXaction = "schedxaction"
)

// Instance is the behavior every persistable ledger object carries: an
// identity, a type tag, and the dirty/destroying/infant lifecycle state the
// commit path keys on.
type Instance interface {
	TypeName() string
	GUID() GUID
	SetGUID(GUID)

	IsDirty() bool
	MarkDirty()
	MarkClean()

	// IsDestroying reports that the object is slated for deletion; a commit
	// of such an instance removes its row instead of writing it.
	IsDestroying() bool
	Destroy()

	// IsInfant reports that the object has never been committed, which
	// forces insert semantics over update.
	IsInfant() bool

	BeginEdit()
	CommitEdit()
}

// BaseInstance supplies the Instance lifecycle state. Domain objects embed it.
type BaseInstance struct {
	typeName   string
	guid       GUID
	dirty      bool
	destroying bool
	infant     bool
	editLevel  int
}

// NewBaseInstance creates lifecycle state for a freshly built object: infant,
// clean, with a random GUID.
func NewBaseInstance(typeName string) BaseInstance {
	return BaseInstance{typeName: typeName, guid: NewGUID(), infant: true}
}

func (b *BaseInstance) TypeName() string   { return b.typeName }
func (b *BaseInstance) GUID() GUID         { return b.guid }
func (b *BaseInstance) SetGUID(g GUID)     { b.guid = g }
func (b *BaseInstance) IsDirty() bool      { return b.dirty }
func (b *BaseInstance) MarkDirty()         { b.dirty = true }
func (b *BaseInstance) IsDestroying() bool { return b.destroying }
func (b *BaseInstance) Destroy()           { b.destroying = true }
func (b *BaseInstance) IsInfant() bool     { return b.infant }

// MarkClean clears the dirty flag and retires infant status: the object has
// now been committed at least once.
func (b *BaseInstance) MarkClean() {
	b.dirty = false
	b.infant = false
}

// BeginEdit raises the edit level. While the level is non-zero, property
// setters do not mark the instance dirty; bulk loads bracket objects with
// BeginEdit/CommitEdit to keep freshly loaded state from looking modified.
func (b *BaseInstance) BeginEdit() { b.editLevel++ }

// CommitEdit lowers the edit level.
func (b *BaseInstance) CommitEdit() {
	if b.editLevel > 0 {
		b.editLevel--
	}
}

// Editing reports whether the instance is inside a BeginEdit bracket.
func (b *BaseInstance) Editing() bool { return b.editLevel > 0 }

// Touch marks the instance dirty unless an edit bracket is open.
func (b *BaseInstance) Touch() {
	if !b.Editing() {
		b.dirty = true
	}
}
