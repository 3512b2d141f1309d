package entity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRef - поле postedBy: либо ObjectID, либо раскрытый документ пользователя.
// В JSON отдается в том же виде, в каком пришло из MongoDB.
type UserRef struct {
	ID   primitive.ObjectID
	User *User
}

func (r *UserRef) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.ObjectID:
		r.User = nil
		return bson.RawValue{Type: t, Value: data}.Unmarshal(&r.ID)
	case bsontype.EmbeddedDocument:
		var user User
		if err := bson.Unmarshal(data, &user); err != nil {
			return err
		}
		r.ID, r.User = user.ID, &user
		return nil
	case bsontype.Null, bsontype.Undefined:
		*r = UserRef{}
		return nil
	default:
		return fmt.Errorf("cannot decode %s into postedBy", t)
	}
}

func (r UserRef) MarshalJSON() ([]byte, error) {
	if r.User != nil {
		return json.Marshal(r.User)
	}
	return json.Marshal(r.ID)
}

func (r *UserRef) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		var user User
		if err := json.Unmarshal(data, &user); err != nil {
			return err
		}
		r.ID, r.User = user.ID, &user
		return nil
	}
	r.User = nil
	return json.Unmarshal(data, &r.ID)
}
