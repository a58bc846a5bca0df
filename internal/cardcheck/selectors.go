package cardcheck

import "github.com/ibeckermayer/cardcheck/internal/browser"

// Customer card DOM locators.
// These are isolated here because the card markup changes with the UI.
// Update these when the smoke test breaks on a layout change.

var (
	// Client selection
	SelectClient   = browser.Text("Selecionar Cliente")
	ClientListItem = browser.CSS(".glass")

	// Compact card action buttons
	IAButton     = browser.CSS(`button[aria-label="IA"]`)
	TrocarButton = browser.CSS(`button[aria-label="Trocar"]`)

	// Card body and its bottom sheet
	CardHeading  = browser.CSS("h2.text-base")
	ActionsSheet = browser.Text("Ações do Cliente")
	SheetCancel  = browser.Text("Cancelar")

	// Only rendered from the sm breakpoint up
	DesktopCard = browser.CSS(`div.hidden.sm\:flex`)
)
