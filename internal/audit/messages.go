package audit

import (
	"fmt"

	"github.com/angelmondragon/stockroom/pkg/enums"
)

const (
	MsgMissingToken       = "[0] Attempt to access a protected API without authorization data"
	MsgMissingSubject     = "[1] Attempt to use invalid authorization data: missing subject"
	MsgInvalidToken       = "[2] Attempt to use invalid authorization data"
	MsgInvalidCredentials = "[4] Attempt to enter invalid authorization data"
)

func MsgUnknownUser(login string) string {
	return fmt.Sprintf("[3] Attempt to use invalid authorization data: %s", login)
}

func MsgDuplicateLogin(login string) string {
	return fmt.Sprintf("Attempt to register an existing login `%s`", login)
}

func MsgRegistered(login string) string {
	return fmt.Sprintf("Registration of a new user `%s`", login)
}

func MsgTokenIssued(login string) string {
	return fmt.Sprintf("Get new token for user `%s`", login)
}

// MsgWrongRole records an actor reaching for the other role's API, e.g.
// "Buyer `bob` attempting to access trader`s API".
func MsgWrongRole(actual enums.Role, login string, required enums.Role) string {
	return fmt.Sprintf("%s `%s` attempting to access %s`s API", actual.Title(), login, required)
}

func MsgProductAdded(login string) string {
	return fmt.Sprintf("User `%s` added a new product", login)
}

func MsgProductBought(login string) string {
	return fmt.Sprintf("User `%s` bought a product", login)
}
