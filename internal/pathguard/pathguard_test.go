package pathguard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Rejects(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "empty", path: "", wantErr: ErrEmptyPath},
		{name: "blank", path: "   ", wantErr: ErrEmptyPath},
		{name: "relative", path: "photos/a.png", wantErr: ErrRelativePath},
		{name: "parent segment", path: filepath.Join(root, "a") + "/../../etc/passwd", wantErr: ErrTraversal},
		{name: "relative parent", path: "../a.png", wantErr: ErrTraversal},
		{name: "outside root", path: "/definitely/not/inside/a.png", wantErr: ErrOutsideRoot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.path, root)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var pathErr *PathError
			assert.ErrorAs(t, err, &pathErr)
		})
	}
}

func TestValidate_AcceptsInsideRoot(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "in", "a.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(input), 0o755))
	require.NoError(t, os.WriteFile(input, []byte("x"), 0o644))

	got, err := Validate(input, root)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(input)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestValidate_NonExistentPathUnderRoot(t *testing.T) {
	root := t.TempDir()

	got, err := Validate(filepath.Join(root, "out", "new", "b.webp"), root)
	require.NoError(t, err)
	assert.Equal(t, "b.webp", filepath.Base(got))
}

func TestValidate_NoRootOnlyRequiresAbsolute(t *testing.T) {
	_, err := Validate("/tmp/whatever/photo.png", "")
	assert.NoError(t, err)

	_, err = Validate("photo.png", "")
	assert.ErrorIs(t, err, ErrRelativePath)
}

func TestValidate_SymlinkEscape(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "root")
	outside := filepath.Join(base, "outside")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.MkdirAll(outside, 0o755))

	secret := filepath.Join(outside, "secret.png")
	require.NoError(t, os.WriteFile(secret, []byte("x"), 0o644))

	link := filepath.Join(root, "innocent.png")
	if err := os.Symlink(secret, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	_, err := Validate(link, root)
	assert.ErrorIs(t, err, ErrSymlinkEscape)

	dirLink := filepath.Join(root, "linked-dir")
	require.NoError(t, os.Symlink(outside, dirLink))

	_, err = Validate(filepath.Join(dirLink, "new-output.png"), root)
	assert.ErrorIs(t, err, ErrSymlinkEscape)
}

func TestValidate_SymlinkInsideRootAllowed(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "real.png")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	link := filepath.Join(root, "alias.png")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	got, err := Validate(link, root)
	require.NoError(t, err)
	assert.Equal(t, "real.png", filepath.Base(got))
}

func TestValidateOutput(t *testing.T) {
	root := t.TempDir()

	_, err := ValidateOutput(root, "photo-compressed.webp", root)
	assert.NoError(t, err)

	for _, name := range []string{"", ".", "..", "a/b.png", `a\b.png`} {
		_, err := ValidateOutput(root, name, root)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestGuard(t *testing.T) {
	root := t.TempDir()
	guard := New(root)
	assert.Equal(t, root, guard.Root())

	_, err := guard.Input(filepath.Join(root, "a.png"))
	assert.NoError(t, err)

	_, err = guard.Output(root, "../escape.png")
	assert.ErrorIs(t, err, ErrInvalidName)
}
