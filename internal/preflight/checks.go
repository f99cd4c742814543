package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/disk"
	"golang.org/x/sys/unix"

	"ripfeed/internal/source"
)

func fail(name, path, format string, args ...any) Result {
	return Result{Name: name, Detail: path + " (error: " + fmt.Sprintf(format, args...) + ")"}
}

// CheckDirectoryAccess passes when path is an existing directory the process
// can list, read and write.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return fail(name, path, "does not exist")
	case err != nil:
		return fail(name, path, "stat: %v", err)
	case !info.IsDir():
		return fail(name, path, "not a directory")
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fail(name, path, "insufficient permissions: %v", err)
	}
	return Result{Name: name, Passed: true, Detail: path + " (read/write ok)"}
}

// CheckSourceReadable verifies that locator can be opened as a disc image
// directory (manifest present), a transport stream file, or a device node.
// An empty manifestName selects the default manifest file name.
func CheckSourceReadable(name, locator, manifestName string) Result {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return Result{Name: name, Detail: "no locator"}
	}
	if manifestName == "" {
		manifestName = source.DefaultManifestName
	}

	info, err := os.Stat(locator)
	if os.IsNotExist(err) {
		return fail(name, locator, "does not exist")
	}
	if err != nil {
		return fail(name, locator, "stat: %v", err)
	}

	switch mode := info.Mode(); {
	case mode.IsDir():
		manifest := filepath.Join(locator, manifestName)
		if err := unix.Access(manifest, unix.R_OK); err != nil {
			return fail(name, locator, "no readable %s: %v", manifestName, err)
		}
		return Result{Name: name, Passed: true, Detail: locator + " (disc image)"}
	case mode&os.ModeDevice != 0:
		if err := unix.Access(locator, unix.R_OK); err != nil {
			return fail(name, locator, "device not readable: %v", err)
		}
		return Result{Name: name, Passed: true, Detail: locator + " (device)"}
	case mode.IsRegular():
		if err := unix.Access(locator, unix.R_OK); err != nil {
			return fail(name, locator, "not readable: %v", err)
		}
		return Result{Name: name, Passed: true, Detail: locator + " (stream file)"}
	default:
		return fail(name, locator, "unsupported file type %s", mode.Type())
	}
}

// CheckFreeSpace passes when the filesystem holding path has at least
// minBytes available to unprivileged users.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	usage, err := disk.Usage(path)
	if err != nil {
		return fail(name, path, "usage: %v", err)
	}
	free := humanize.IBytes(usage.Free)
	if usage.Free < minBytes {
		return fail(name, path, "%s free, need %s", free, humanize.IBytes(minBytes))
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s free)", path, free)}
}
