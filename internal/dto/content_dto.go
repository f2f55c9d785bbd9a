package dto

// ContentItem is both the admin create payload and one entry of a YAML
// import file.
type ContentItem struct {
	Title          string   `json:"title" yaml:"title"`
	Content        string   `json:"content" yaml:"content"`
	ContentType    string   `json:"content_type" yaml:"content_type"`
	Trimester      int      `json:"trimester" yaml:"trimester"`
	WeekRangeStart *int     `json:"week_range_start" yaml:"week_range_start"`
	WeekRangeEnd   *int     `json:"week_range_end" yaml:"week_range_end"`
	Tags           []string `json:"tags" yaml:"tags"`
	IsPremium      bool     `json:"is_premium" yaml:"is_premium"`
	ImageURL       string   `json:"image_url" yaml:"image_url"`
	VideoURL       string   `json:"video_url" yaml:"video_url"`
}

type ContentFile struct {
	Items []ContentItem `yaml:"items"`
}

type ContentFilter struct {
	Trimester   int    `query:"trimester"`
	ContentType string `query:"type"`
}
