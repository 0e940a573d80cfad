package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bjoernmichaelsen/ghdepup/pkg/deps"
)

// Options configures declaration rendering.
type Options struct {
	Verbose bool // Prefix each line with a comment block
}

// Declarations renders one assignment per descriptor, in the given order.
// Verbose blocks are separated by an empty line.
func Declarations(descs []*deps.Descriptor, opts Options) string {
	var b strings.Builder
	for i, d := range descs {
		if opts.Verbose {
			if i > 0 {
				b.WriteByte('\n')
			}
			writeComment(&b, d)
		}
		fmt.Fprintf(&b, "%s=%q\n", deps.OutputKey(d.Name), d.BestString())
	}
	return b.String()
}

func writeComment(b *strings.Builder, d *deps.Descriptor) {
	versions := make([]string, len(d.AvailableVersions))
	for i, v := range d.AvailableVersions {
		versions[i] = v.String()
	}
	fmt.Fprintf(b, "# %s\n", d.Name)
	fmt.Fprintf(b, "# from %s\n", d.Project)
	fmt.Fprintf(b, "# previous version: %s\n", d.CurrentString())
	fmt.Fprintf(b, "# with tags: %s\n", strings.Join(d.AvailableTags, ", "))
	fmt.Fprintf(b, "# with versions: %s\n", strings.Join(versions, ", "))
}

// JSON encodes descs as an indented JSON array.
func JSON(descs []*deps.Descriptor) ([]byte, error) {
	if descs == nil {
		descs = []*deps.Descriptor{}
	}
	data, err := json.MarshalIndent(descs, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
