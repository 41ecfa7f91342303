package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// SandboxFS is an in-memory filesystem shared by the file tools. Nothing
// touches the host filesystem.
type SandboxFS struct {
	mu    sync.RWMutex
	files map[string]string
}

// NewSandboxFS creates a sandbox with a few seed files
func NewSandboxFS() *SandboxFS {
	return &SandboxFS{
		files: map[string]string{
			"/docs/readme.txt": "Welcome to the sandbox filesystem.",
			"/docs/notes.md":   "# Notes\n\n- governed tools only",
		},
	}
}

// FileRead reads a file from the sandbox
type FileRead struct {
	fs *SandboxFS
}

// NewFileRead creates the file_read executor
func NewFileRead(fs *SandboxFS) *FileRead { return &FileRead{fs: fs} }

func (f *FileRead) Name() string        { return "file_read" }
func (f *FileRead) Category() string    { return "file" }
func (f *FileRead) Description() string { return "Read contents of a file" }

// Execute reads the file at args["path"]
func (f *FileRead) Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	path, _ := args["path"].(string)
	if path == "" {
		return map[string]interface{}{
			"error":   "Missing required parameter: path",
			"example": `{"path": "/docs/readme.txt"}`,
		}, nil
	}

	f.fs.mu.RLock()
	content, ok := f.fs.files[path]
	f.fs.mu.RUnlock()

	if !ok {
		return map[string]interface{}{
			"error": fmt.Sprintf("File not found: %s", path),
		}, nil
	}

	return map[string]interface{}{
		"path":    path,
		"content": content,
		"size":    len(content),
	}, nil
}

// FileWrite writes a file into the sandbox
type FileWrite struct {
	fs *SandboxFS
}

// NewFileWrite creates the file_write executor
func NewFileWrite(fs *SandboxFS) *FileWrite { return &FileWrite{fs: fs} }

func (f *FileWrite) Name() string        { return "file_write" }
func (f *FileWrite) Category() string    { return "file" }
func (f *FileWrite) Description() string { return "Write content to a file" }

// Execute writes args["content"] to args["path"]
func (f *FileWrite) Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	path, _ := args["path"].(string)
	content, _ := args["content"].(string)
	if path == "" {
		return map[string]interface{}{
			"error":   "Missing required parameter: path",
			"example": `{"path": "/docs/new.txt", "content": "hello"}`,
		}, nil
	}

	f.fs.mu.Lock()
	f.fs.files[path] = content
	f.fs.mu.Unlock()

	return map[string]interface{}{
		"path":       path,
		"written":    len(content),
		"written_at": time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// FileList lists sandbox files under a prefix
type FileList struct {
	fs *SandboxFS
}

// NewFileList creates the file_list executor
func NewFileList(fs *SandboxFS) *FileList { return &FileList{fs: fs} }

func (f *FileList) Name() string        { return "file_list" }
func (f *FileList) Category() string    { return "file" }
func (f *FileList) Description() string { return "List files and directories" }

// Execute lists files under args["path"] (default "/")
func (f *FileList) Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	prefix, _ := args["path"].(string)
	if prefix == "" {
		prefix = "/"
	}

	f.fs.mu.RLock()
	paths := make([]string, 0, len(f.fs.files))
	for p := range f.fs.files {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	f.fs.mu.RUnlock()

	sort.Strings(paths)

	return map[string]interface{}{
		"path":  prefix,
		"files": paths,
		"count": len(paths),
	}, nil
}
