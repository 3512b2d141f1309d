package repository

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	productsCollection   = "products"
	categoriesCollection = "categories"
	subsCollection       = "subs"
	usersCollection      = "users"
)

func lookup(from, field string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: field},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: field},
	}}}
}

// unwrap превращает результат $lookup в одиночный документ; пустой массив убирает поле
func unwrap(field string) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: field, Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$" + field, 0}}}},
	}}}
}

func refProjection(fields ...string) bson.D {
	doc := bson.D{}
	for _, f := range fields {
		doc = append(doc, bson.E{Key: f, Value: "$$ref." + f})
	}
	return doc
}

func mapRefs(field string, fields ...string) bson.D {
	return bson.D{{Key: "$map", Value: bson.D{
		{Key: "input", Value: "$" + field},
		{Key: "as", Value: "ref"},
		{Key: "in", Value: refProjection(fields...)},
	}}}
}

// populateStages раскрывает category и subs целиком
func populateStages() mongo.Pipeline {
	return mongo.Pipeline{
		lookup(categoriesCollection, "category"),
		unwrap("category"),
		lookup(subsCollection, "subs"),
	}
}

// populateWithAuthorStages дополнительно раскрывает postedBy (без служебных полей пользователя)
func populateWithAuthorStages() mongo.Pipeline {
	stages := populateStages()
	return append(stages,
		lookup(usersCollection, "postedBy"),
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "postedBy", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{mapRefs("postedBy", "_id", "name", "email", "role"), 0}}}},
		}}},
	)
}

// refStages раскрывает category, subs и postedBy только до {_id, name}
func refStages() mongo.Pipeline {
	return mongo.Pipeline{
		lookup(categoriesCollection, "category"),
		lookup(subsCollection, "subs"),
		lookup(usersCollection, "postedBy"),
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "category", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{mapRefs("category", "_id", "name"), 0}}}},
			{Key: "subs", Value: mapRefs("subs", "_id", "name")},
			{Key: "postedBy", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{mapRefs("postedBy", "_id", "name"), 0}}}},
		}}},
	}
}

func match(filter bson.M) bson.D {
	return bson.D{{Key: "$match", Value: filter}}
}

func concat(parts ...mongo.Pipeline) mongo.Pipeline {
	var out mongo.Pipeline
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
