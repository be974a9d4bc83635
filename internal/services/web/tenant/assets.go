package tenant

import "strconv"

const faviconDir = "/favicons/"

// FaviconPath returns the tenant's .ico path.
func FaviconPath(slug string) string {
	return faviconDir + slug + ".ico"
}

// AppleTouchIconPath returns the tenant's 180px touch icon path.
func AppleTouchIconPath(slug string) string {
	return faviconDir + slug + "-apple-180.png"
}

// PNGIconPath returns the tenant's PNG icon path for size 16 or 32.
func PNGIconPath(slug string, size int) (string, bool) {
	switch size {
	case 16, 32:
		return faviconDir + slug + "-" + strconv.Itoa(size) + ".png", true
	default:
		return "", false
	}
}
