// Package swww sets output wallpapers through the swww client.
package swww

// Command is the swww client binary.
const Command = "swww"

// Applier sets the wallpaper of one output.
type Applier interface {
	// Apply starts setting path as the wallpaper of output.
	// It must not wait for the change to finish. The returned error only
	// reports a failure to start; it never causes a retry.
	Apply(output, path string) error
}

// Args builds the swww argument list: img -o <output> <extra...> <path>.
func Args(output, path string, extra []string) []string {
	args := make([]string, 0, len(extra)+4)
	args = append(args, "img", "-o", output)
	args = append(args, extra...)
	return append(args, path)
}
