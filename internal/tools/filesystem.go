package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mxsafiri/ubongo.os/internal/command"
)

// FilesystemTool manages files under the user's well-known folders. All
// relative locations resolve inside Home; absolute paths are accepted as-is
// so anaphoric references ("move it ...") work on previously created items.
type FilesystemTool struct {
	Home string
}

func NewFilesystemTool(home string) *FilesystemTool {
	abs, _ := filepath.Abs(home)
	return &FilesystemTool{Home: abs}
}

func (f *FilesystemTool) Name() string { return "filesystem" }

func (f *FilesystemTool) Description() string {
	return "Manage files and folders in the local workspace: create, move, delete, search, and sort."
}

func (f *FilesystemTool) Actions() []ActionSpec {
	return []ActionSpec{
		{
			Action:      command.IntentCreateFolder,
			Required:    []string{"name"},
			Optional:    []string{"location"},
			Description: "Create a folder; location is desktop, downloads, documents, or home",
		},
		{
			Action:      command.IntentMoveItem,
			Required:    []string{"source", "destination"},
			Description: "Move a file or folder to another location",
		},
		{
			Action:      command.IntentDeleteItem,
			Required:    []string{"path"},
			Description: "Delete a file or folder (non-idempotent: a second run fails)",
		},
		{
			Action:      command.IntentSearchFiles,
			Optional:    []string{"location", "file_type", "time_range"},
			Description: "List files in a location, optionally filtered by type",
		},
		{
			Action:      command.IntentSortFiles,
			Optional:    []string{"location"},
			Description: "Sort a folder's files into category subfolders",
		},
	}
}

func (f *FilesystemTool) Invoke(ctx context.Context, action command.Intent, args map[string]string) command.ExecutionResult {
	switch action {
	case command.IntentCreateFolder:
		return f.createFolder(args["name"], args["location"])
	case command.IntentMoveItem:
		return f.moveItem(args["source"], args["destination"])
	case command.IntentDeleteItem:
		return f.deleteItem(args["path"])
	case command.IntentSearchFiles:
		return f.searchFiles(args["location"], args["file_type"])
	case command.IntentSortFiles:
		return f.sortFiles(args["location"])
	default:
		return failure(action, fmt.Sprintf("filesystem tool does not serve %q", action), nil)
	}
}

// resolveLocation maps a friendly location name to a directory. Anything
// absolute passes through untouched.
func (f *FilesystemTool) resolveLocation(location string) string {
	if filepath.IsAbs(location) {
		return location
	}
	switch strings.ToLower(location) {
	case "desktop":
		return filepath.Join(f.Home, "Desktop")
	case "downloads":
		return filepath.Join(f.Home, "Downloads")
	case "documents":
		return filepath.Join(f.Home, "Documents")
	case "", "home":
		return f.Home
	default:
		return filepath.Join(f.Home, location)
	}
}

func (f *FilesystemTool) createFolder(name, location string) command.ExecutionResult {
	dir := f.resolveLocation(location)
	path := filepath.Join(dir, name)

	if err := os.MkdirAll(path, 0755); err != nil {
		return failure(command.IntentCreateFolder, fmt.Sprintf("Could not create folder %s", name), err)
	}
	return success(command.IntentCreateFolder,
		fmt.Sprintf("Created folder %s in %s", name, displayLocation(location)),
		map[string]string{"path": path, "name": name})
}

func (f *FilesystemTool) moveItem(source, destination string) command.ExecutionResult {
	src := f.resolveLocation(source)
	if _, err := os.Stat(src); err != nil {
		return failure(command.IntentMoveItem, fmt.Sprintf("Nothing to move at %s", source), err)
	}

	destDir := f.resolveLocation(destination)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return failure(command.IntentMoveItem, fmt.Sprintf("Could not prepare %s", destination), err)
	}

	target := filepath.Join(destDir, filepath.Base(src))
	if err := os.Rename(src, target); err != nil {
		return failure(command.IntentMoveItem, fmt.Sprintf("Could not move %s", filepath.Base(src)), err)
	}
	return success(command.IntentMoveItem,
		fmt.Sprintf("Moved %s to %s", filepath.Base(src), displayLocation(destination)),
		map[string]string{"path": target})
}

func (f *FilesystemTool) deleteItem(path string) command.ExecutionResult {
	target := f.resolveLocation(path)
	if _, err := os.Stat(target); err != nil {
		return failure(command.IntentDeleteItem, fmt.Sprintf("Nothing to delete at %s", path), err)
	}
	if err := os.RemoveAll(target); err != nil {
		return failure(command.IntentDeleteItem, fmt.Sprintf("Could not delete %s", path), err)
	}
	return success(command.IntentDeleteItem,
		fmt.Sprintf("Deleted %s", filepath.Base(target)),
		map[string]string{"deleted": target})
}

func (f *FilesystemTool) searchFiles(location, fileType string) command.ExecutionResult {
	dir := f.resolveLocation(location)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return failure(command.IntentSearchFiles, fmt.Sprintf("Could not read %s", displayLocation(location)), err)
	}

	exts := extensionsFor(fileType)
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if exts != nil && !exts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		names = append(names, entry.Name())
	}

	listed := names
	if len(listed) > 10 {
		listed = listed[:10]
	}
	msg := fmt.Sprintf("Found %d files in %s", len(names), displayLocation(location))
	if len(names) == 0 {
		msg = fmt.Sprintf("No matching files in %s", displayLocation(location))
	}
	return success(command.IntentSearchFiles, msg, map[string]string{
		"path":  dir,
		"count": fmt.Sprintf("%d", len(names)),
		"files": strings.Join(listed, ", "),
	})
}

// category folder names mirror the original sorter.
var categories = map[string]string{
	".jpg": "Images", ".jpeg": "Images", ".png": "Images", ".gif": "Images", ".svg": "Images",
	".pdf": "Documents", ".doc": "Documents", ".docx": "Documents", ".txt": "Documents",
	".md": "Documents", ".xls": "Documents", ".xlsx": "Documents", ".ppt": "Documents", ".pptx": "Documents",
	".mp4": "Videos", ".mov": "Videos", ".avi": "Videos", ".mkv": "Videos",
	".mp3": "Audio", ".wav": "Audio", ".flac": "Audio", ".m4a": "Audio",
	".zip": "Archives", ".tar": "Archives", ".gz": "Archives", ".rar": "Archives", ".7z": "Archives",
	".go": "Code", ".py": "Code", ".js": "Code", ".ts": "Code", ".sh": "Code", ".c": "Code", ".rs": "Code",
}

func (f *FilesystemTool) sortFiles(location string) command.ExecutionResult {
	dir := f.resolveLocation(location)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return failure(command.IntentSortFiles, fmt.Sprintf("Could not read %s", displayLocation(location)), err)
	}

	moved := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		category, ok := categories[strings.ToLower(filepath.Ext(entry.Name()))]
		if !ok {
			continue
		}
		catDir := filepath.Join(dir, category)
		if err := os.MkdirAll(catDir, 0755); err != nil {
			continue
		}
		if err := os.Rename(filepath.Join(dir, entry.Name()), filepath.Join(catDir, entry.Name())); err != nil {
			continue
		}
		moved++
	}

	return success(command.IntentSortFiles,
		fmt.Sprintf("Sorted %d files in %s into category folders", moved, displayLocation(location)),
		map[string]string{"path": dir, "moved": fmt.Sprintf("%d", moved)})
}

func extensionsFor(fileType string) map[string]bool {
	var exts []string
	switch strings.TrimSuffix(strings.ToLower(fileType), "s") {
	case "image", "screenshot", "photo":
		exts = []string{".jpg", ".jpeg", ".png", ".gif", ".svg"}
	case "pdf":
		exts = []string{".pdf"}
	case "document":
		exts = []string{".pdf", ".doc", ".docx", ".txt", ".md"}
	case "video":
		exts = []string{".mp4", ".mov", ".avi", ".mkv"}
	default:
		return nil // no filter
	}
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		set[e] = true
	}
	return set
}

func displayLocation(location string) string {
	if location == "" {
		return "home"
	}
	return location
}
