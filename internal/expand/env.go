package expand

import "os"

func processEnvLookup(name string) (string, bool) {
	return os.LookupEnv(name)
}
