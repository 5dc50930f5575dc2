// Package credentials resolves provider API keys from the process
// environment and from secret files.
//
// A credential is looked up by its variable name, for example
// OPENAI_API_KEY. Sources are consulted in order and the first non-empty
// value wins:
//
//	files, err := credentials.NewFileSource("/run/secrets", true, logger)
//	if err != nil {
//		return err
//	}
//	chain := credentials.Chain{credentials.NewEnvSource(), files}
//	defer chain.Close()
//
//	registry := providerfactory.NewRegistry(settings,
//		providerfactory.WithLookupEnv(chain.Lookup))
//
// A FileSource reads one file per credential, named either exactly like
// the variable or in lower case (openai_api_key), the layout used by Docker
// and Kubernetes secret mounts. Files must not be readable by group or
// others.
package credentials
