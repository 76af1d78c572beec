package ui

import "context"

// PreviewOpener echoes each written file to the terminal. It satisfies workspace.Opener.
type PreviewOpener struct {
	Output *OutputHandler
}

func (p PreviewOpener) Open(_ context.Context, path, content string) error {
	p.Output.FilePreview(path, content)
	return nil
}
