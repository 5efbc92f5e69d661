package blog

// BlockKind identifies a piece of the post body.
type BlockKind int

const (
	Paragraph BlockKind = iota
	Image
	Gallery
)

func (k BlockKind) String() string {
	switch k {
	case Image:
		return "image"
	case Gallery:
		return "gallery"
	default:
		return "paragraph"
	}
}

// Block is one piece of a rendered post body.
type Block struct {
	Kind   BlockKind
	Text   string
	Images []string
}

// EmptyContent is shown for a post without paragraphs.
const EmptyContent = "Contenido no disponible."

// Hero returns the header image of a post, "" if it has none.
func Hero(imageURLs []string) string {
	if len(imageURLs) == 0 {
		return ""
	}
	return imageURLs[0]
}

// Layout interleaves paragraphs and images after the hero. A single
// paragraph is followed by a gallery of every remaining image; otherwise
// paragraph i is followed by image i+1 when it exists.
func Layout(info, imageURLs []string) []Block {
	switch len(info) {
	case 0:
		return []Block{{Kind: Paragraph, Text: EmptyContent}}
	case 1:
		blocks := []Block{{Kind: Paragraph, Text: info[0]}}
		if len(imageURLs) > 1 {
			blocks = append(blocks, Block{Kind: Gallery, Images: append([]string(nil), imageURLs[1:]...)})
		}
		return blocks
	}

	blocks := make([]Block, 0, len(info)*2)
	for i, p := range info {
		blocks = append(blocks, Block{Kind: Paragraph, Text: p})
		if i+1 < len(imageURLs) {
			blocks = append(blocks, Block{Kind: Image, Images: []string{imageURLs[i+1]}})
		}
	}
	return blocks
}

// IsParagraph, IsImage and IsGallery are used by templates.
func (b Block) IsParagraph() bool { return b.Kind == Paragraph }
func (b Block) IsImage() bool     { return b.Kind == Image }
func (b Block) IsGallery() bool   { return b.Kind == Gallery }
