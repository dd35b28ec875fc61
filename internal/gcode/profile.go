package gcode

// Profile defines a post-processor configuration for a controller.
type Profile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsBuiltIn   bool   `json:"is_built_in"`
	Units       string `json:"units"` // "mm" or "inches"

	// Startup codes
	StartCode    []string `json:"start_code"`
	SpindleStart string   `json:"spindle_start"` // e.g. "M3 S%d"; empty for pen plotters
	SpindleStop  string   `json:"spindle_stop"`

	// Motion
	RapidMove string `json:"rapid_move"`
	FeedMove  string `json:"feed_move"`

	// End codes; "[SafeZ]" is replaced with the pen-up height
	EndCode []string `json:"end_code"`

	CommentPrefix string `json:"comment_prefix"`
	CommentSuffix string `json:"comment_suffix"`

	DecimalPlaces int `json:"decimal_places"`
}

// Profiles are the built-in post-processors. Generic must stay last.
var Profiles = []Profile{
	{
		Name:          "Grbl",
		Description:   "Standard Grbl configuration (Arduino CNC shields)",
		IsBuiltIn:     true,
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M5", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
	{
		Name:          "Mach3",
		Description:   "Mach3 CNC control software",
		IsBuiltIn:     true,
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G28 X0 Y0", "M5", "M30"},
		CommentPrefix: "(",
		CommentSuffix: ")",
		DecimalPlaces: 4,
	},
	{
		Name:          "LinuxCNC",
		Description:   "LinuxCNC (formerly EMC2)",
		IsBuiltIn:     true,
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M5", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 4,
	},
	{
		Name:          "PenPlotter",
		Description:   "Z-axis pen plotter without a spindle",
		IsBuiltIn:     true,
		Units:         "mm",
		StartCode:     []string{"G90", "G21"},
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 2,
	},
	{
		Name:          "Generic",
		Description:   "Generic standard GCode",
		IsBuiltIn:     true,
		Units:         "mm",
		StartCode:     []string{"G90", "G21"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M5", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
}

// GetProfile returns a built-in profile by name, or Generic if not found.
func GetProfile(name string) Profile {
	return FindProfile(name, nil)
}

// FindProfile looks the name up in custom first, then in the built-ins,
// falling back to Generic.
func FindProfile(name string, custom []Profile) Profile {
	for _, p := range custom {
		if p.Name == name {
			return p
		}
	}
	for _, p := range Profiles {
		if p.Name == name {
			return p
		}
	}
	return Profiles[len(Profiles)-1]
}

// ProfileNames returns the names of all built-in profiles.
func ProfileNames() []string {
	var names []string
	for _, p := range Profiles {
		names = append(names, p.Name)
	}
	return names
}
