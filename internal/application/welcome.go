package application

// WelcomeTitle and WelcomeContent define the note seeded on first unlock.
const WelcomeTitle = "Welcome to hiddenote"

const WelcomeContent = `# Welcome to hiddenote!

Thanks for trying out hiddenote, a small encrypted note store.

## Getting Started

- ` + "`hiddenote new <title>`" + ` creates an empty note
- ` + "`hiddenote save <title>`" + ` writes a note from standard input
- ` + "`hiddenote save <title> --follow`" + ` keeps writing as input arrives, saving after a quiet period
- ` + "`hiddenote show <title> --html`" + ` previews the markdown as HTML
- ` + "`hiddenote search <text>`" + ` finds notes by title
- ` + "`hiddenote delete <title>`" + ` removes a note

## Your Privacy

Every note body is encrypted with a key derived from your password. The
password itself is never stored, and nothing leaves this machine.

There is no password recovery. If you forget it, your notes cannot be read.

---

*You can delete this note any time with ` + "`hiddenote delete \"Welcome to hiddenote\"`" + `.*
`
