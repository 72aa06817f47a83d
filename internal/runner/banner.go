package runner

import (
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/lancomm/pkg/version"
)

var banner = `
  _                                        
 | | __ _ _ __   ___ ___  _ __ ___  _ __ ___  
 | |/ _' | '_ \ / __/ _ \| '_ ' _ \| '_ ' _ \ 
 | | (_| | | | | (_| (_) | | | | | | | | | | |
 |_|\__,_|_| |_|\___\___/|_| |_| |_|_| |_| |_|
`

// showBanner is used to show the banner to the user
func showBanner() {
	gologger.Print().Msgf("%s\t\t\t\t%s\n\n", banner, version.GetVersion())
}
