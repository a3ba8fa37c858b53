// Package all imports every tool package so their init registrations
// run. Import it for side effects from the binary entry point.
package all

import (
	_ "github.com/nexora/nexora/pkg/tools/calendar"
	_ "github.com/nexora/nexora/pkg/tools/contacts"
	_ "github.com/nexora/nexora/pkg/tools/drive"
	_ "github.com/nexora/nexora/pkg/tools/email"
	_ "github.com/nexora/nexora/pkg/tools/memory"
	_ "github.com/nexora/nexora/pkg/tools/tasks"
)
