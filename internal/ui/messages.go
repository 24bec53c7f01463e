package ui

// helpPagerMsg contains the result of a help pager command
type helpPagerMsg struct {
	err error
}

// quitMsg signals that the application should quit
type quitMsg struct {
	saveConfig bool
}
