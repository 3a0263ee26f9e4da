package models

// MaskSource is how a variant acquires its mask.
type MaskSource int

const (
	// MaskYellow detects the mask automatically from yellow pixels.
	MaskYellow MaskSource = iota
	// MaskBrush lets the user paint the mask with the mouse.
	MaskBrush
)

// Variant describes one of the two desktop applications.
type Variant struct {
	Name       string
	Title      string
	Hint       string
	MaskSource MaskSource

	AllowClear           bool
	AllowSave            bool
	AllowAlgorithmChoice bool

	LoadedStatus string
}

var (
	YellowVariant = Variant{
		Name:         "yellow",
		Title:        "Inpaint Yellow-Masked Image",
		Hint:         "Upload an image with yellow mask (e.g., yellow rectangle)",
		MaskSource:   MaskYellow,
		LoadedStatus: "Yellow mask detected. Click 'Inpaint Image'.",
	}

	ManualVariant = Variant{
		Name:                 "manual",
		Title:                "Manual Inpaint - Draw Mask",
		Hint:                 "Draw mask with mouse (left = draw, right = erase).",
		MaskSource:           MaskBrush,
		AllowClear:           true,
		AllowSave:            true,
		AllowAlgorithmChoice: true,
		LoadedStatus:         "Draw or erase mask with mouse.",
	}
)

// ButtonState is the enabled state of each action button.
type ButtonState struct {
	Upload  bool
	Clear   bool
	Inpaint bool
	Save    bool
}

// Buttons derives the button state for v from the workspace contents.
func (w *Workspace) Buttons(v Variant) ButtonState {
	hasImage := w.HasImage()
	return ButtonState{
		Upload:  true,
		Clear:   v.AllowClear && hasImage,
		Inpaint: hasImage,
		Save:    v.AllowSave && w.HasResult(),
	}
}
