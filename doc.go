// Package stratus is the entry point of the Stratus netlist/layout
// description tool.
//
// Opening a session resolves the user configuration, loads it over the
// bundled defaults and composes one namespace from the modules listed in the
// manifest:
//
//	sess, err := stratus.Open(stratus.Options{Args: os.Args[1:]})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	techno := sess.Settings.Techno
//	place, _ := sess.Namespace.Lookup("Place")
//
// Configuration file resolution, first match wins:
//  1. --config path, or $STRATUS_CONFIG
//  2. ./.st_config{.toml,.yaml,.yml,.json,.hcl,}
//  3. $HOME/.st_config{.toml,.yaml,.yml,.json,.hcl,}
//  4. the bundled default configuration, with a notice
//
// Modules register themselves with Register; the namespace binds each public
// name to the last module in manifest order that defines it. The settings
// are attached under the name "st_config".
package stratus
