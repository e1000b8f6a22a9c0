// Package assets turns a folder of product assets into the opaque context
// string handed to participants. Files are sniffed with mimetype; text files
// are inlined and images get a simulated visual analysis.
package assets

import (
	"errors"
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// NoFolder is returned when the folder does not exist.
	NoFolder = "No folder found"
	// EmptyFolder is returned when the folder has no files.
	EmptyFolder = "Empty folder"
)

// Describe summarizes the files in dir as "; "-joined facts. It never fails;
// scan problems are reported inside the returned string.
func Describe(dir string) string {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return NoFolder
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Sprintf("Error scanning folder: %v", err)
	}

	var files []fs.DirEntry
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e)
		}
	}
	if len(files) == 0 {
		return EmptyFolder
	}

	facts := []string{fmt.Sprintf("Found %d file(s)", len(files))}
	category := filepath.Base(filepath.Clean(dir))
	for _, f := range files {
		facts = append(facts, describeFile(filepath.Join(dir, f.Name()), category)...)
	}
	return strings.Join(facts, "; ")
}

func describeFile(path, category string) []string {
	name := filepath.Base(path)

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return []string{fmt.Sprintf("File: %s", name)}
	}

	switch {
	case strings.HasPrefix(mtype.String(), "image/"):
		return describeImage(name, mtype, category)
	case mtype.Is("text/plain") && strings.EqualFold(filepath.Ext(name), ".txt"):
		data, err := os.ReadFile(path)
		if err != nil {
			return []string{fmt.Sprintf("Text file %s (unable to read content)", name)}
		}
		return []string{fmt.Sprintf("Text file %s: %s", name, string(data))}
	default:
		return []string{fmt.Sprintf("File: %s", name)}
	}
}

func describeImage(name string, mtype *mimetype.MIME, category string) []string {
	stem := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
	width, height := dimensions(name)

	facts := []string{
		fmt.Sprintf("Image file: %s", name),
		fmt.Sprintf("Image dimensions: %dx%d pixels", width, height),
		fmt.Sprintf("Image format: %s", strings.ToUpper(strings.TrimPrefix(mtype.Extension(), "."))),
	}

	switch {
	case containsAny(stem, "tshirt", "t-shirt") || strings.Contains(category, "TShirt"):
		facts = append(facts, tshirt(stem)...)
	case containsAny(stem, "sweater", "sweatshirt") || strings.Contains(category, "Sweater"):
		facts = append(facts, sweater...)
	case containsAny(stem, "jeans", "pants") || strings.Contains(category, "Jeans"):
		facts = append(facts, jeans...)
	}

	return append(facts, generic...)
}

// dimensions derives stable pseudo dimensions in [1200, 2400) from the name.
func dimensions(name string) (int, int) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	sum := h.Sum32()
	return 1200 + int(sum%1200), 1200 + int((sum/1200)%1200)
}

func tshirt(stem string) []string {
	facts := []string{"Product type: T-shirt"}

	switch {
	case strings.Contains(stem, "plain"):
		facts = append(facts, "Style: Plain, solid color", "Pattern: None")
	case strings.Contains(stem, "graphic"):
		facts = append(facts, "Style: Graphic print", "Pattern: Decorative graphic on front")
	case strings.Contains(stem, "stripe"):
		facts = append(facts, "Style: Striped pattern", "Pattern: Horizontal stripes")
	default:
		facts = append(facts, "Style: Classic casual t-shirt", "Pattern: Minimal design")
	}

	switch {
	case strings.Contains(stem, "black"):
		facts = append(facts, "Primary color: Black", "Color palette: Monochrome")
	case strings.Contains(stem, "white"):
		facts = append(facts, "Primary color: White", "Color palette: Bright, clean")
	case strings.Contains(stem, "blue"):
		facts = append(facts, "Primary color: Blue", "Color palette: Cool tones")
	default:
		facts = append(facts, "Primary color: Mixed/Custom", "Color palette: Balanced, versatile")
	}

	return append(facts,
		"Neckline: Crew neck (round)",
		"Sleeve length: Short",
		"Fit: Regular/Relaxed",
		"Material appearance: Soft cotton blend",
	)
}

var sweater = []string{
	"Product type: Sweater/Sweatshirt",
	"Style: Casual outerwear",
	"Material appearance: Knitted fabric",
	"Thickness: Medium weight",
	"Neckline: Crew neck",
	"Pattern: Minimal design",
	"Sleeve length: Long",
	"Fit: Relaxed, comfortable",
	"Cuffs: Ribbed finish",
	"Primary color: Mixed natural tones",
	"Color palette: Earthy, versatile",
}

var jeans = []string{
	"Product type: Jeans/Pants",
	"Style: Casual bottoms",
	"Material appearance: Denim fabric",
	"Wash: Medium wash",
	"Fit: Regular/Straight leg",
	"Rise: Mid-rise",
	"Length: Full length",
	"Details: Five-pocket design",
	"Closure: Button and zipper fly",
	"Primary color: Indigo blue",
	"Fabric texture: Slightly textured",
}

var generic = []string{
	"Target audience: Adults, casual fashion",
	"Usage context: Everyday wear, casual outings",
	"Lighting conditions: Studio lighting, neutral background",
	"Image perspective: Front view, fully visible",
	"Season: All-season versatile wear",
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Categories lists the sub-folders of root, each naming a product category.
func Categories(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("assets: read %s: %w", root, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
